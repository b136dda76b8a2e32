// Package integration reads Arrow integration-test JSON files into arrays.
//
// The JSON layout is the one used by the Arrow cross-language integration
// suite: a schema, record batches whose columns carry VALIDITY and DATA
// (or VIEWS and VARIADIC_DATA_BUFFERS for view types), and dictionary
// batches referenced by id. Decoded values are handed to the array
// constructors, so every array read here is produced by this module.
//
// View records spell INLINED as hex for both string and binary views.
package integration
