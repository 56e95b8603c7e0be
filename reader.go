package las

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Reader provides forward-only, streaming read access to a LAS or LAZ
// stream. The header and (E)VLR directory are parsed once at construction;
// points are decoded lazily, one record per ReadPoint call, in on-disk
// order. A Reader is not safe for concurrent use.
type Reader struct {
	header    *Header
	src       io.ReadSeeker
	points    *bufio.Reader
	decoder   PointDecoder
	closer    io.Closer
	remaining uint64
	record    []byte
	err       error
}

// NewReader creates a reader over an uncompressed LAS stream. Reading a LAZ
// stream requires NewReaderWithCodec.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	return NewReaderWithCodec(r, nil)
}

// NewReaderWithCodec creates a reader with a compression codec bound. The
// codec is consulted only when the header flags the stream as compressed; a
// compressed stream with a nil codec fails with ErrCompressionUnavailable.
func NewReaderWithCodec(r io.ReadSeeker, codec Codec) (*Reader, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := readDirectory(r, header, start); err != nil {
		return nil, err
	}

	if _, err := r.Seek(start+int64(header.offsetToPointData), io.SeekStart); err != nil {
		return nil, err
	}
	reader := &Reader{
		header:    header,
		src:       r,
		points:    bufio.NewReader(r),
		remaining: header.PointCount,
		record:    make([]byte, header.Format.RecordLength()),
	}
	if header.Compressed {
		if codec == nil {
			return nil, ErrCompressionUnavailable
		}
		decoder, err := codec.OpenDecoder(reader.points, header)
		if err != nil {
			return nil, err
		}
		reader.decoder = decoder
	}
	return reader, nil
}

// Open opens a LAS file for reading. The file is closed by Close.
func Open(path string) (*Reader, error) {
	return OpenWithCodec(path, nil)
}

// OpenWithCodec opens a LAS or LAZ file with a compression codec bound.
func OpenWithCodec(path string, codec Codec) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReaderWithCodec(f, codec)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// readHeader pulls the fixed preamble off the stream, sized by the header's
// own declared length.
func readHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, 227)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	headerSize := int(binary.LittleEndian.Uint16(buf[94:]))
	if headerSize > len(buf) {
		rest := make([]byte, headerSize-len(buf))
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		buf = append(buf, rest...)
	}
	return ParseHeader(buf)
}

// readDirectory parses the VLR table following the header and, on 1.4
// streams, the EVLR table after the point data. The stream position on
// return is unspecified; the caller seeks to the point data itself.
func readDirectory(r io.ReadSeeker, h *Header, start int64) error {
	for i := uint32(0); i < h.numberOfVlrs; i++ {
		v, err := readVlr(r)
		if err != nil {
			return err
		}
		h.Vlrs = append(h.Vlrs, v)
	}

	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	pointStart := start + int64(h.offsetToPointData)
	if pos > pointStart {
		return fmt.Errorf("%w: vlr table runs %d bytes into the point data", ErrInvalidVlr, pos-pointStart)
	}
	if pos < pointStart {
		h.VlrPadding = make([]byte, pointStart-pos)
		if _, err := io.ReadFull(r, h.VlrPadding); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidVlr, err)
		}
	}

	if h.evlrCount > 0 {
		if h.evlrOffset < uint64(h.offsetToPointData) {
			return fmt.Errorf("%w: evlr table at %d overlaps the point data", ErrInvalidVlr, h.evlrOffset)
		}
		if _, err := r.Seek(start+int64(h.evlrOffset), io.SeekStart); err != nil {
			return err
		}
		for i := uint32(0); i < h.evlrCount; i++ {
			v, err := readEvlr(r)
			if err != nil {
				return err
			}
			h.Evlrs = append(h.Evlrs, v)
		}
	}
	return nil
}

// Header returns the parsed header. It is immutable for the lifetime of the
// reader.
func (r *Reader) Header() *Header {
	return r.header
}

// CRS extracts the coordinate reference system from the directory, or nil
// when the stream carries none.
func (r *Reader) CRS() (*CRS, error) {
	return FindCRS(r.header)
}

// ReadPoint returns the next point, or (nil, nil) once the stream is
// exhausted. A record cut short by the end of the stream fails with
// ErrTruncatedData and ends the sequence; no partial point is surfaced.
// All other read surfaces are thin wrappers over this primitive.
func (r *Reader) ReadPoint() (*Point, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.remaining == 0 {
		return nil, nil
	}

	record := r.record
	if r.decoder != nil {
		decoded, err := r.decoder.DecodePoint()
		if errors.Is(err, io.EOF) {
			r.err = fmt.Errorf("%w: %d points missing from compressed stream", ErrTruncatedData, r.remaining)
			return nil, r.err
		} else if err != nil {
			r.err = err
			return nil, r.err
		}
		record = decoded
	} else if _, err := io.ReadFull(r.points, record); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = fmt.Errorf("%w: %d points remaining", ErrTruncatedData, r.remaining)
		}
		r.err = err
		return nil, r.err
	}

	point, err := DecodePoint(record, r.header.Format, r.header.Transforms)
	if err != nil {
		r.err = err
		return nil, r.err
	}
	r.remaining--
	return &point, nil
}

// ReadAll drains the remaining points into a slice. Prefer ReadPoint for
// streams too large to hold in memory.
func (r *Reader) ReadAll() ([]Point, error) {
	points := make([]Point, 0, r.remaining)
	for {
		p, err := r.ReadPoint()
		if err != nil {
			return points, err
		}
		if p == nil {
			return points, nil
		}
		points = append(points, *p)
	}
}

// Close releases the reader's resources: the bound decoder, if any, and the
// underlying file when the reader opened one.
func (r *Reader) Close() error {
	if r.err == nil {
		r.err = ErrClosed
	}
	var err error
	if r.decoder != nil {
		err = r.decoder.Close()
		r.decoder = nil
	}
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
		r.closer = nil
	}
	return err
}
