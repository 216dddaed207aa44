// Package query compiles the abstract filter expression used by the ORM
// layer (boolean combinators, matches, range bounds, existence checks) into
// the store's native filter form.
package query
