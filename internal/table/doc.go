// Package table defines the in-memory row table the scoring engine operates
// on, together with the CSV codec and the column normalizer that maps
// heterogeneous export headers onto one canonical schema.
//
// row.go holds the Row and Table types. Rows are created once per input
// line, extended in place by the engine stages, and never removed — bad
// rows are flagged, not dropped, so output cardinality always matches the
// input.
//
// normalize.go normalizes header names and query text (NFKC, lowercase,
// whitespace collapse) and maps known aliases from both the raw
// search-console export schema and the pre-processed schema onto canonical
// snake_case names. A required column that is still missing afterwards is a
// fatal *SchemaError.
//
// parse.go coerces numeric cells. Values that fail coercion become zero and
// leave a per-row issue marker so downstream consumers can tell "genuinely
// zero" from "defective".
package table
