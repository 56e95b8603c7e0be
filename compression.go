package las

import "io"

// Codec is the adapter boundary to an external point compressor such as a
// LAZ implementation. The reader and writer treat it as a blocking, ordered,
// one-record-at-a-time transducer: an implementation is free to run worker
// threads internally, but records must cross this interface in stream order.
type Codec interface {
	// OpenDecoder binds a decoder to the compressed point data section of
	// r. The stream is positioned at the first byte of point data; the
	// header describes the record layout the decoder must produce.
	OpenDecoder(r io.Reader, header *Header) (PointDecoder, error)
	// OpenEncoder binds an encoder that writes the compressed point data
	// section to w.
	OpenEncoder(w io.Writer, header *Header) (PointEncoder, error)
}

// PointDecoder produces decompressed raw point records in on-disk order.
type PointDecoder interface {
	// DecodePoint returns the next raw record, exactly one record length
	// long, or io.EOF when the stream is exhausted.
	DecodePoint() ([]byte, error)
	Close() error
}

// PointEncoder consumes raw point records in write order.
type PointEncoder interface {
	// EncodePoint compresses and writes one raw record.
	EncodePoint(record []byte) error
	// Close flushes any buffered records. The underlying stream is left
	// positioned after the last compressed byte.
	Close() error
}
