// Package core infers typed schemas for CSV tables and reconciles several
// tables into one row set.
//
// The package is independent of any transport. The HTTP server, the CLI and
// tests all drive it through the same functions.
//
// # Pipeline
//
//  1. [NormalizeHeaders] turns raw header strings into unique field names.
//  2. [InferType] picks one [ScalarType] per field by trying the
//     [Candidates] in order: Integer, then Date, then Text.
//  3. [NewTypedTable] converts every cell into a [Value] and exposes the
//     table as raw rows, typed rows and [Record] mappings.
//  4. [UnionFields] and [MergeTables] combine several tables over the union
//     of their fields.
//  5. [Pivot] and [ToMatrix] reshape merged rows for output.
//
// Steps 1 to 5 are pure and synchronous. [Service] adds fetching and CSV
// parsing through the [TextSource] and [TableReader] interfaces and loads the
// tables of one merge in parallel.
//
// # Errors
//
// Failures are typed ([TypeConflictError], [ShapeMismatchError],
// [DuplicateFieldError]) and fatal to the call that raised them. [MapError]
// turns any error from the pipeline into a [UserMessage] with a support code.
package core
