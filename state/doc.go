// Package state defines the shape of the shared graph state and how node
// updates are merged into it.
//
// A Schema declares every field a graph may carry together with its value
// Kind and merge Strategy:
//
//   - Replace: a written value overwrites the previous one
//   - Append:  written element(s) are concatenated to the end of the existing
//     sequence, preserving arrival order, with no deduplication
//
// Schema.Merge never mutates its inputs; it returns a fresh State. Unknown
// fields and values of the wrong kind are reported as *SchemaViolationError.
package state
