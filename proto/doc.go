// Package proto implements the binary command protocol of the matrix wall.
//
// Every message is a versioned envelope:
//
//	[MAGIC 'M' 'W'][VERSION u8][TYPE u8][BODY]
//
// All integers are little-endian; strings and arrays are length-prefixed. A
// message either decodes fully into one validated command or has no effect.
// Structural failures (truncation, bad magic, trailing garbage) are reported
// as *DecodeError. Well-formed messages that violate the contract, such as an
// unknown version or an undefined style reference, are reported as
// *SchemaViolation. The two are distinct types so the command surface can
// report a precise failure.
package proto
