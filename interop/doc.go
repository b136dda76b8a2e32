// Package interop converts arrays of this module to and from arrow-go arrays
// and carries them over Arrow IPC.
//
// This package implements:
//   - ToArrow / FromArrow: one array, buffers copied in both directions
//   - ToRecordBatch / FromRecordBatch: named columns as one record batch
//   - IPCWriter: record batches to and from the IPC stream format
package interop
