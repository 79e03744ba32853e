// Package core provides schema inference, coercion and typed filtering for
// delimited text files.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Pipeline
//
// Data flows one way through four stages:
//
//  1. [Parse] tokenizes raw text into headers and [RawRow] maps. Blank lines
//     are skipped, ragged rows are padded or truncated, and rows the reader
//     cannot recover are counted rather than fatal.
//  2. [InferSchema] samples the first [DefaultSampleSize] rows of each column
//     and decides numeric, then date, then text.
//  3. [Coerce] converts every raw cell of the full row set into a [Value]:
//     Null, Text, Number, InvalidNumber or Date.
//  4. [Evaluate] applies an immutable [FilterSpec] and returns the passing
//     rows in their original order. It is re-run from scratch whenever the
//     spec changes.
//
// The schema is sample-based, not exhaustive: a value past the sample that
// does not fit its column's type degrades to Null or InvalidNumber instead of
// changing the type.
//
// # Sessions
//
// [Service] ties the engine to a storage root and keeps one [Session] per
// browser view. A session holds one [Dataset] snapshot and one filter spec.
// Loading another file into a session replaces the dataset and clears the
// filters. Concurrent loads are bounded by a [LoadLimiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: File errors (size, encoding, missing header)
//   - LOAD001-LOAD003: Load errors (busy, cancelled, timed out)
//   - STO001-STO004: Storage errors (not found, access denied, exists)
//   - FLT001-FLT002: Filter errors (malformed spec, bad bound)
//   - SES001: Session expired
//   - HIS001: History store unavailable
package core
