package docbolt

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordFind is called after each find operation.
	// matched is the number of records returned, duration is the total time
	// taken, err is nil if successful.
	RecordFind(matched int, duration time.Duration, err error)

	// RecordCreate is called after each create operation.
	// count is the number of records in the batch.
	RecordCreate(count int, duration time.Duration, err error)

	// RecordUpdate is called after each update operation.
	// affected is the summed affected-record count.
	RecordUpdate(affected int64, duration time.Duration, err error)

	// RecordDelete is called after each delete operation.
	RecordDelete(affected int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFind(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordCreate(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordUpdate(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordDelete(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FindCount      atomic.Int64
	FindErrors     atomic.Int64
	FindTotalNanos atomic.Int64
	CreateCount    atomic.Int64
	CreateItems    atomic.Int64
	CreateErrors   atomic.Int64
	UpdateCount    atomic.Int64
	UpdateAffected atomic.Int64
	UpdateErrors   atomic.Int64
	DeleteCount    atomic.Int64
	DeleteAffected atomic.Int64
	DeleteErrors   atomic.Int64
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(matched int, duration time.Duration, err error) {
	b.FindCount.Add(1)
	b.FindTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FindErrors.Add(1)
	}
}

// RecordCreate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreate(count int, duration time.Duration, err error) {
	b.CreateCount.Add(1)
	b.CreateItems.Add(int64(count))
	if err != nil {
		b.CreateErrors.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(affected int64, duration time.Duration, err error) {
	b.UpdateCount.Add(1)
	b.UpdateAffected.Add(affected)
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(affected int64, duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	b.DeleteAffected.Add(affected)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}
