// Package ncom encodes and decodes OxTS NCOM navigation records.
//
// An NCOM stream is a flat sequence of fixed 72-byte records with no header,
// footer or length prefix. All multi-byte fields are little-endian.
//
// Each record carries a chain of three unsigned byte-sum checksums:
//
//	offset 22: sum of bytes [1,22)
//	offset 61: sum of bytes [1,61), including checksum 1
//	offset 71: sum of bytes [1,71), including checksum 2
//
// The sync byte at offset 0 is never covered. Latitude and longitude are
// float64 radians at offsets 23 and 31. Every other byte is opaque to this
// package and is preserved as-is.
//
// Record is a value type; methods that change a field return a new Record
// and never alias the receiver.
package ncom
