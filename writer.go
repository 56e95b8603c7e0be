package las

import (
	"fmt"
	"io"
	"math"
	"os"
)

// Writer writes a LAS or LAZ stream sequentially: header and VLR table at
// open, one point record per WritePoint, EVLR table and finalized header at
// close. The destination must be seekable because the statistics fields of
// the header are only known once the last point is in. A Writer is not safe
// for concurrent use.
type Writer struct {
	header   *Header
	dst      io.WriteSeeker
	encoder  PointEncoder
	closer   io.Closer
	start    int64
	bounds   Bounds
	count    uint64
	byReturn [15]uint64
	closed   bool
}

// NewWriter starts an uncompressed LAS stream on w using header as the
// template. The template is copied and validated at open: scales must be
// positive, and the version is raised silently when the point format needs a
// newer one. Statistics fields of the template (counts, bounds) are ignored
// and recomputed from the written points.
func NewWriter(w io.WriteSeeker, header *Header) (*Writer, error) {
	return NewWriterWithCodec(w, header, nil)
}

// NewWriterWithCodec starts a stream with a compression codec bound. The
// codec is consulted only when the template's Compressed flag is set; a
// compressed template with a nil codec fails with ErrCompressionUnavailable.
func NewWriterWithCodec(w io.WriteSeeker, header *Header, codec Codec) (*Writer, error) {
	h, err := prepareHeader(header)
	if err != nil {
		return nil, err
	}
	if h.Compressed && codec == nil {
		return nil, ErrCompressionUnavailable
	}
	start, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	// Provisional header; Close rewrites it with the final statistics.
	buf, err := h.Serialize()
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(buf); err != nil {
		return nil, err
	}
	for _, v := range h.Vlrs {
		if err := v.writeVlr(w); err != nil {
			return nil, err
		}
	}
	if _, err := w.Write(h.VlrPadding); err != nil {
		return nil, err
	}

	writer := &Writer{
		header: h,
		dst:    w,
		start:  start,
		bounds: emptyBounds(),
	}
	if h.Compressed {
		encoder, err := codec.OpenEncoder(w, h)
		if err != nil {
			return nil, err
		}
		writer.encoder = encoder
	}
	return writer, nil
}

// Create creates a LAS file for writing. The file is closed by Close.
func Create(path string, header *Header) (*Writer, error) {
	return CreateWithCodec(path, header, nil)
}

// CreateWithCodec creates a LAS or LAZ file with a compression codec bound.
func CreateWithCodec(path string, header *Header, codec Codec) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriterWithCodec(f, header, codec)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// prepareHeader copies and freezes the template: validates the transforms,
// settles the version, distributes the records between the VLR and EVLR
// tables, and computes the offset to point data.
func prepareHeader(template *Header) (*Header, error) {
	h := *template
	if err := h.Transforms.Validate(); err != nil {
		return nil, err
	}
	if !h.Version.Valid() || !h.Version.SupportsFormat(h.Format) {
		h.Version = MinimumVersion(h.Format)
	}
	if h.Format.IsExtended {
		// The extended formats mandate a WKT CRS.
		h.WKTCRS = true
	}

	vlrs, evlrs, err := splitVlrs(h.Version, template.Vlrs, template.Evlrs)
	if err != nil {
		return nil, err
	}
	h.Vlrs = vlrs
	h.Evlrs = evlrs

	h.VlrPadding = append([]byte(nil), template.VlrPadding...)
	if h.Version.requiresPointDataStartSignature() {
		n := len(h.VlrPadding)
		if n < 2 || h.VlrPadding[n-2] != pointDataStartSignature[0] ||
			h.VlrPadding[n-1] != pointDataStartSignature[1] {
			h.VlrPadding = append(h.VlrPadding, pointDataStartSignature[:]...)
		}
	}

	offset := uint64(h.headerSize()) + uint64(len(h.VlrPadding))
	for _, v := range h.Vlrs {
		offset += v.TotalLength(false)
	}
	if offset > math.MaxUint32 {
		return nil, fmt.Errorf("%w: vlr table pushes point data past the 32-bit offset", ErrInvalidVlr)
	}
	h.offsetToPointData = uint32(offset)

	h.PointCount = 0
	h.PointsByReturn = [15]uint64{}
	h.Bounds = Bounds{}
	h.evlrOffset = 0
	h.evlrCount = 0
	return &h, nil
}

// Header returns the frozen header. Statistics fields are finalized at
// Close; before that they hold zeroes.
func (w *Writer) Header() *Header {
	return w.header
}

// WritePoint appends one point record. The point must fit the frozen format;
// attributes beyond the format's field widths fail with
// ErrPointAttributesMismatch, and a count that would no longer fit the
// header's fields fails with ErrStatisticsOverflow. Nothing is written on
// either error.
func (w *Writer) WritePoint(p Point) error {
	if w.closed {
		return ErrClosed
	}
	h := w.header
	if !p.Matches(h.Format) {
		return fmt.Errorf("%w: return %d/%d class %d channel %d with %d extra bytes against format %d",
			ErrPointAttributesMismatch, p.ReturnNumber, p.NumberOfReturns, p.Classification,
			p.ScannerChannel, len(p.ExtraBytes), h.Format.ID)
	}
	if !h.Version.HasExtendedCounts() && w.count == math.MaxUint32 {
		return fmt.Errorf("%w: %s caps the point count at %d",
			ErrStatisticsOverflow, h.Version, uint32(math.MaxUint32))
	}

	record, err := EncodePoint(p, h.Format, h.Transforms)
	if err != nil {
		return err
	}
	if w.encoder != nil {
		if err := w.encoder.EncodePoint(record); err != nil {
			return err
		}
	} else if _, err := w.dst.Write(record); err != nil {
		return err
	}

	// Bounds track the quantized coordinates, the values a reader will
	// recover, not the exact inputs.
	w.bounds.Grow(Vector{
		X: h.Transforms.X.Real(h.Transforms.X.Raw(p.X)),
		Y: h.Transforms.Y.Real(h.Transforms.Y.Raw(p.Y)),
		Z: h.Transforms.Z.Real(h.Transforms.Z.Raw(p.Z)),
	})
	w.count++
	w.byReturn[w.returnBin(p.ReturnNumber)]++
	return nil
}

// WriteAll appends every point in the slice.
func (w *Writer) WriteAll(points []Point) error {
	for _, p := range points {
		if err := w.WritePoint(p); err != nil {
			return err
		}
	}
	return nil
}

// returnBin maps a return number to its header bin, clamped to the bins the
// format can store.
func (w *Writer) returnBin(returnNumber uint8) int {
	bins := 5
	if w.header.Format.IsExtended {
		bins = 15
	}
	if returnNumber < 1 {
		return 0
	}
	if int(returnNumber) > bins {
		return bins - 1
	}
	return int(returnNumber) - 1
}

// Close finalizes the stream: flushes the encoder, writes the EVLR table,
// and rewrites the header with the final counts and bounds. The underlying
// file is closed when the writer created one.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	err := w.finalize()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
		w.closer = nil
	}
	return err
}

func (w *Writer) finalize() error {
	h := w.header
	if w.encoder != nil {
		err := w.encoder.Close()
		w.encoder = nil
		if err != nil {
			return err
		}
	}

	end, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if len(h.Evlrs) > 0 {
		h.evlrOffset = uint64(end - w.start)
		h.evlrCount = uint32(len(h.Evlrs))
		for _, v := range h.Evlrs {
			if err := v.writeEvlr(w.dst); err != nil {
				return err
			}
		}
	}

	h.PointCount = w.count
	h.PointsByReturn = w.byReturn
	if !w.bounds.IsEmpty() {
		h.Bounds = w.bounds
	}

	buf, err := h.Serialize()
	if err != nil {
		return err
	}
	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.dst.Write(buf); err != nil {
		return err
	}
	_, err = w.dst.Seek(0, io.SeekEnd)
	return err
}
