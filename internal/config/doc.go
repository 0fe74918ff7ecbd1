// Package config is the typed, defaulted accessor over a parsed cluster
// document.
//
// A [Node] is an immutable view of one mapping in the document. Lookups are
// pure reads: a missing required key yields a [MissingConfigurationError], a
// present value that cannot be converted to the requested type yields a
// [TypeMismatchError], and a string outside a closed set yields an
// [InvalidEnumValueError]. Every error carries the full dotted path of the
// offending key, e.g. "core_fleet.candidates[0].instance_type".
package config
