// Package las provides ASPRS LAS point-cloud format support for the orb
// geometry library. It enables reading and writing LAS versions 1.0 through
// 1.4 and all eleven point record formats, streaming points one record at a
// time so large files never need to be held in memory. Compressed (LAZ)
// streams are handled through a pluggable Codec; the compression algorithm
// itself lives outside this package.
package las

import (
	"errors"
)

// Common errors returned by this package.
var (
	ErrMalformedHeader          = errors.New("las: malformed header")
	ErrUnsupportedVersion       = errors.New("las: unsupported version")
	ErrUnsupportedPointFormat   = errors.New("las: unsupported point format")
	ErrInvalidPointRecordLength = errors.New("las: invalid point record length")
	ErrExtraBytesLengthMismatch = errors.New("las: extra bytes length mismatch")
	ErrPointAttributesMismatch  = errors.New("las: point attributes do not fit the point format")
	ErrInvalidScale             = errors.New("las: scale factor must be positive")
	ErrTruncatedData            = errors.New("las: truncated point data")
	ErrInvalidVlr               = errors.New("las: invalid variable length record")
	ErrCompressionUnavailable   = errors.New("las: compressed stream but no codec bound")
	ErrStatisticsOverflow       = errors.New("las: point count overflows 32-bit header field")
	ErrClosed                   = errors.New("las: closed")
)

// fileSignature is the four-byte magic that opens every LAS file.
var fileSignature = [4]byte{'L', 'A', 'S', 'F'}

// pointDataStartSignature precedes point data in LAS 1.0 files.
var pointDataStartSignature = [2]byte{0xCC, 0xDD}
