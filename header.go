package las

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// GPSTimeType selects the meaning of the GPS time field in point records.
type GPSTimeType uint8

// The two GPS time interpretations.
const (
	// GPSWeekTime is seconds within the GPS week, the only option before
	// LAS 1.2.
	GPSWeekTime GPSTimeType = 0
	// GPSStandardTime is satellite GPS time minus 1e9.
	GPSStandardTime GPSTimeType = 1
)

// compressedFormatMask is set on the raw point format id of LAZ streams.
const compressedFormatMask = 0x80

// Header describes the layout, source, and interpretation of the points in a
// LAS stream. It doubles as the writer's configuration template: fill one in,
// hand it to NewWriter, and it is validated and frozen at open. Statistics
// fields (counts, bounds) are maintained by the writer and finalized at
// close.
type Header struct {
	// FileSourceID identifies the flight line or merge operation, zero if
	// unassigned.
	FileSourceID uint16
	// GPSTimeType is the global-encoding GPS time flag.
	GPSTimeType GPSTimeType
	// WaveformDataInternal and WaveformDataExternal are the
	// global-encoding waveform location flags. Mutually exclusive.
	WaveformDataInternal bool
	WaveformDataExternal bool
	// SyntheticReturnNumbers flags artificially generated return numbers.
	SyntheticReturnNumbers bool
	// WKTCRS is true when the CRS is stored as WKT rather than GeoTIFF
	// keys. Forced on for the extended point formats.
	WKTCRS bool
	// GUID is the project identifier.
	GUID uuid.UUID
	// Version is the LAS version. The writer raises it silently when the
	// chosen point format or features need a newer one.
	Version Version
	// SystemIdentifier names the hardware or operation that produced the
	// points. At most 31 bytes survive the fixed-width field.
	SystemIdentifier string
	// GeneratingSoftware names the producing software.
	GeneratingSoftware string
	// CreationDayOfYear and CreationYear date the file, GMT, January 1 is
	// day 1. Zero means unset.
	CreationDayOfYear uint16
	CreationYear      uint16
	// Format is the point record layout, extra bytes included.
	Format Format
	// Transforms quantize real coordinates into the stored integers.
	Transforms Transforms
	// Bounds is the tightest box over all written points, in real-world
	// units.
	Bounds Bounds
	// PointCount is the total number of point records.
	PointCount uint64
	// PointsByReturn counts points per return number, bins 1-15. Versions
	// before 1.4 can only store the first five bins.
	PointsByReturn [15]uint64
	// WaveformDataStart is the byte offset of the waveform data packet
	// record, zero when there is none. Carried by 1.3 and later headers and
	// round-tripped as is; this package does not read waveform packets.
	WaveformDataStart uint64
	// Padding is kept after the fixed header block, before the VLRs.
	Padding []byte
	// VlrPadding is kept after the VLR table, before the points.
	VlrPadding []byte
	// Vlrs are the variable length records written between header and
	// point data.
	Vlrs []Vlr
	// Evlrs are the extended records written after point data. Requires
	// 1.4.
	Evlrs []Vlr
	// Compressed marks a LAZ stream. Reading or writing one requires a
	// Codec.
	Compressed bool

	// Parse artifacts used by the sequential reader.
	offsetToPointData uint32
	numberOfVlrs      uint32
	evlrOffset        uint64
	evlrCount         uint32
}

// CreationDate returns the file creation date, or false when the header
// carries none.
func (h *Header) CreationDate() (time.Time, bool) {
	if h.CreationYear == 0 || h.CreationDayOfYear == 0 {
		return time.Time{}, false
	}
	t := time.Date(int(h.CreationYear), 1, 1, 0, 0, 0, 0, time.UTC)
	return t.AddDate(0, 0, int(h.CreationDayOfYear)-1), true
}

// SetCreationDate sets the day-of-year and year fields from t.
func (h *Header) SetCreationDate(t time.Time) {
	h.CreationDayOfYear = uint16(t.YearDay())
	h.CreationYear = uint16(t.Year())
}

func (h *Header) globalEncoding() uint16 {
	var n uint16
	if h.GPSTimeType == GPSStandardTime {
		n |= 1
	}
	if h.WaveformDataInternal {
		n |= 2
	}
	if h.WaveformDataExternal {
		n |= 4
	}
	if h.SyntheticReturnNumbers {
		n |= 8
	}
	if h.WKTCRS {
		n |= 16
	}
	return n
}

func (h *Header) setGlobalEncoding(n uint16) {
	h.GPSTimeType = GPSTimeType(n & 1)
	h.WaveformDataInternal = n&2 != 0
	h.WaveformDataExternal = n&4 != 0
	h.SyntheticReturnNumbers = n&8 != 0
	h.WKTCRS = n&16 != 0
}

// legacyCounts returns the 32-bit total and five-bin counts, zeroed when the
// real statistics do not fit the legacy fields. Extended formats never
// populate the legacy fields.
func (h *Header) legacyCounts() (uint32, [5]uint32) {
	var byReturn [5]uint32
	if h.Format.IsExtended || h.PointCount > math.MaxUint32 {
		return 0, byReturn
	}
	for _, n := range h.PointsByReturn[5:] {
		if n > 0 {
			return 0, byReturn
		}
	}
	for i, n := range h.PointsByReturn[:5] {
		if n > math.MaxUint32 {
			return 0, [5]uint32{}
		}
		byReturn[i] = uint32(n)
	}
	return uint32(h.PointCount), byReturn
}

// ParseHeader parses a complete raw header block. The buffer must hold at
// least the fixed header for the stream's version; bytes beyond it, up to the
// declared header size, are preserved as padding. Text fields are cut at the
// first NUL and trailing garbage is ignored.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < 227 {
		return nil, fmt.Errorf("%w: %d bytes is shorter than any LAS header", ErrMalformedHeader, len(buf))
	}
	if !bytes.Equal(buf[0:4], fileSignature[:]) {
		return nil, fmt.Errorf("%w: bad file signature %q", ErrMalformedHeader, buf[0:4])
	}

	h := &Header{}
	h.FileSourceID = binary.LittleEndian.Uint16(buf[4:])
	h.setGlobalEncoding(binary.LittleEndian.Uint16(buf[6:]))
	copy(h.GUID[:], buf[8:24])
	h.Version = Version{Major: buf[24], Minor: buf[25]}
	if !h.Version.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, h.Version)
	}
	h.SystemIdentifier = nulTerminated(buf[26:58])
	h.GeneratingSoftware = nulTerminated(buf[58:90])
	h.CreationDayOfYear = binary.LittleEndian.Uint16(buf[90:])
	h.CreationYear = binary.LittleEndian.Uint16(buf[92:])
	headerSize := binary.LittleEndian.Uint16(buf[94:])
	h.offsetToPointData = binary.LittleEndian.Uint32(buf[96:])
	h.numberOfVlrs = binary.LittleEndian.Uint32(buf[100:])
	rawFormat := buf[104]
	h.Compressed = rawFormat&compressedFormatMask != 0
	format, err := NewFormat(rawFormat &^ compressedFormatMask)
	if err != nil {
		return nil, err
	}
	recordLength := binary.LittleEndian.Uint16(buf[105:])
	if recordLength < format.BaseLength() {
		return nil, fmt.Errorf("%w: header declares %d bytes, format %d needs %d",
			ErrInvalidPointRecordLength, recordLength, format.ID, format.BaseLength())
	}
	format.ExtraBytes = recordLength - format.BaseLength()
	h.Format = format

	legacyCount := binary.LittleEndian.Uint32(buf[107:])
	var legacyByReturn [5]uint32
	for i := range legacyByReturn {
		legacyByReturn[i] = binary.LittleEndian.Uint32(buf[111+4*i:])
	}
	h.Transforms.X.Scale = math.Float64frombits(binary.LittleEndian.Uint64(buf[131:]))
	h.Transforms.Y.Scale = math.Float64frombits(binary.LittleEndian.Uint64(buf[139:]))
	h.Transforms.Z.Scale = math.Float64frombits(binary.LittleEndian.Uint64(buf[147:]))
	h.Transforms.X.Offset = math.Float64frombits(binary.LittleEndian.Uint64(buf[155:]))
	h.Transforms.Y.Offset = math.Float64frombits(binary.LittleEndian.Uint64(buf[163:]))
	h.Transforms.Z.Offset = math.Float64frombits(binary.LittleEndian.Uint64(buf[171:]))
	h.Bounds.Max.X = math.Float64frombits(binary.LittleEndian.Uint64(buf[179:]))
	h.Bounds.Min.X = math.Float64frombits(binary.LittleEndian.Uint64(buf[187:]))
	h.Bounds.Max.Y = math.Float64frombits(binary.LittleEndian.Uint64(buf[195:]))
	h.Bounds.Min.Y = math.Float64frombits(binary.LittleEndian.Uint64(buf[203:]))
	h.Bounds.Max.Z = math.Float64frombits(binary.LittleEndian.Uint64(buf[211:]))
	h.Bounds.Min.Z = math.Float64frombits(binary.LittleEndian.Uint64(buf[219:]))

	h.PointCount = uint64(legacyCount)
	for i, n := range legacyByReturn {
		h.PointsByReturn[i] = uint64(n)
	}

	n := 227
	if h.Version.HasWaveformOffset() {
		if len(buf) < n+8 {
			return nil, fmt.Errorf("%w: %s header truncated", ErrMalformedHeader, h.Version)
		}
		h.WaveformDataStart = binary.LittleEndian.Uint64(buf[n:])
		n += 8
	}
	if h.Version.HasExtendedCounts() {
		if len(buf) < int(V14.HeaderSize()) {
			return nil, fmt.Errorf("%w: %s header truncated", ErrMalformedHeader, h.Version)
		}
		h.evlrOffset = binary.LittleEndian.Uint64(buf[n:])
		h.evlrCount = binary.LittleEndian.Uint32(buf[n+8:])
		extendedCount := binary.LittleEndian.Uint64(buf[n+12:])
		if extendedCount > 0 {
			if legacyCount > 0 && uint64(legacyCount) != extendedCount {
				return nil, fmt.Errorf("%w: legacy count %d disagrees with extended count %d",
					ErrMalformedHeader, legacyCount, extendedCount)
			}
			h.PointCount = extendedCount
			for i := 0; i < 15; i++ {
				h.PointsByReturn[i] = binary.LittleEndian.Uint64(buf[n+20+8*i:])
			}
		}
		n += 140
	}
	if int(headerSize) > n {
		if len(buf) < int(headerSize) {
			return nil, fmt.Errorf("%w: declared header size %d exceeds available bytes", ErrMalformedHeader, headerSize)
		}
		h.Padding = append([]byte(nil), buf[n:headerSize]...)
	}
	return h, nil
}

// nulTerminated interprets a fixed-width LAS string field: only the bytes
// before the first NUL are significant.
func nulTerminated(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}

// putFixedString writes s into a fixed-width field, truncating to leave at
// least one trailing NUL.
func putFixedString(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	if len(s) >= len(dst) {
		s = s[:len(dst)-1]
	}
	copy(dst, s)
}

// headerSize returns the size of the fixed block plus padding for this
// header's version.
func (h *Header) headerSize() uint16 {
	return h.Version.HeaderSize() + uint16(len(h.Padding))
}

// Serialize renders the raw header block, fixed fields plus padding. The
// offset-to-point-data and directory fields reflect the header's current
// VLR set and statistics.
func (h *Header) Serialize() ([]byte, error) {
	if !h.Version.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, h.Version)
	}
	buf := make([]byte, h.headerSize())
	copy(buf[0:4], fileSignature[:])
	binary.LittleEndian.PutUint16(buf[4:], h.FileSourceID)
	binary.LittleEndian.PutUint16(buf[6:], h.globalEncoding())
	copy(buf[8:24], h.GUID[:])
	buf[24] = h.Version.Major
	buf[25] = h.Version.Minor
	putFixedString(buf[26:58], h.SystemIdentifier)
	putFixedString(buf[58:90], h.GeneratingSoftware)
	binary.LittleEndian.PutUint16(buf[90:], h.CreationDayOfYear)
	binary.LittleEndian.PutUint16(buf[92:], h.CreationYear)
	binary.LittleEndian.PutUint16(buf[94:], h.headerSize())
	binary.LittleEndian.PutUint32(buf[96:], h.offsetToPointData)
	binary.LittleEndian.PutUint32(buf[100:], uint32(len(h.Vlrs)))
	rawFormat := h.Format.ID
	if h.Compressed {
		rawFormat |= compressedFormatMask
	}
	buf[104] = rawFormat
	binary.LittleEndian.PutUint16(buf[105:], h.Format.RecordLength())

	legacyCount, legacyByReturn := h.legacyCounts()
	binary.LittleEndian.PutUint32(buf[107:], legacyCount)
	for i, n := range legacyByReturn {
		binary.LittleEndian.PutUint32(buf[111+4*i:], n)
	}
	binary.LittleEndian.PutUint64(buf[131:], math.Float64bits(h.Transforms.X.Scale))
	binary.LittleEndian.PutUint64(buf[139:], math.Float64bits(h.Transforms.Y.Scale))
	binary.LittleEndian.PutUint64(buf[147:], math.Float64bits(h.Transforms.Z.Scale))
	binary.LittleEndian.PutUint64(buf[155:], math.Float64bits(h.Transforms.X.Offset))
	binary.LittleEndian.PutUint64(buf[163:], math.Float64bits(h.Transforms.Y.Offset))
	binary.LittleEndian.PutUint64(buf[171:], math.Float64bits(h.Transforms.Z.Offset))
	binary.LittleEndian.PutUint64(buf[179:], math.Float64bits(h.Bounds.Max.X))
	binary.LittleEndian.PutUint64(buf[187:], math.Float64bits(h.Bounds.Min.X))
	binary.LittleEndian.PutUint64(buf[195:], math.Float64bits(h.Bounds.Max.Y))
	binary.LittleEndian.PutUint64(buf[203:], math.Float64bits(h.Bounds.Min.Y))
	binary.LittleEndian.PutUint64(buf[211:], math.Float64bits(h.Bounds.Max.Z))
	binary.LittleEndian.PutUint64(buf[219:], math.Float64bits(h.Bounds.Min.Z))

	n := 227
	if h.Version.HasWaveformOffset() {
		binary.LittleEndian.PutUint64(buf[n:], h.WaveformDataStart)
		n += 8
	}
	if h.Version.HasExtendedCounts() {
		binary.LittleEndian.PutUint64(buf[n:], h.evlrOffset)
		binary.LittleEndian.PutUint32(buf[n+8:], h.evlrCount)
		binary.LittleEndian.PutUint64(buf[n+12:], h.PointCount)
		for i, c := range h.PointsByReturn {
			binary.LittleEndian.PutUint64(buf[n+20+8*i:], c)
		}
		n += 140
	}
	copy(buf[n:], h.Padding)
	return buf, nil
}
