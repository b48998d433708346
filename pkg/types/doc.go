// Package types defines the value model, table mappings, configuration and
// the error type shared by the shelf persistence layer.
//
// A Value is a tagged value over a closed set of kinds. A Field binds a column
// name to a pointer into an entity, and a Mapping is the ordered list of
// Fields of one entity instance, primary key first.
package types
