package las

import (
	"encoding/binary"
	"fmt"
	"math"
)

// extraByteDescriptorSize is the fixed size of one descriptor in the
// LASF_Spec/4 VLR payload.
const extraByteDescriptorSize = 192

// ExtraBytesDataType enumerates the field types of the extra-bytes schema.
type ExtraBytesDataType uint8

// Extra-bytes field types from the LAS 1.4 specification. Ids above Double
// are deprecated tuple types or reserved.
const (
	Undocumented     ExtraBytesDataType = 0
	UnsignedChar     ExtraBytesDataType = 1
	Char             ExtraBytesDataType = 2
	UnsignedShort    ExtraBytesDataType = 3
	Short            ExtraBytesDataType = 4
	UnsignedLong     ExtraBytesDataType = 5
	Long             ExtraBytesDataType = 6
	UnsignedLongLong ExtraBytesDataType = 7
	LongLong         ExtraBytesDataType = 8
	Float            ExtraBytesDataType = 9
	Double           ExtraBytesDataType = 10
)

// ByteSize returns the field width for this data type. Undocumented fields
// report zero; their width comes from the options field instead.
func (t ExtraBytesDataType) ByteSize() int {
	switch t {
	case UnsignedChar, Char:
		return 1
	case UnsignedShort, Short:
		return 2
	case UnsignedLong, Long, Float:
		return 4
	case UnsignedLongLong, LongLong, Double:
		return 8
	default:
		return 0
	}
}

// ExtraByteDescriptor describes one user-defined field appended to every
// point record, as carried in the LASF_Spec/4 VLR.
type ExtraByteDescriptor struct {
	Name        string
	Description string
	DataType    ExtraBytesDataType
	// Options holds the no-data/min/max/scale/offset relevance bits; for
	// Undocumented fields it is the field's byte size instead.
	Options uint8
	// Scale and Offset linearly map the stored value when the relevant
	// options bits are set.
	Scale  float64
	Offset float64
}

// ByteSize returns the width of this field within the extra-bytes tail.
func (d ExtraByteDescriptor) ByteSize() int {
	if d.DataType == Undocumented {
		return int(d.Options)
	}
	return d.DataType.ByteSize()
}

// ExtraBytesVlr builds the LASF_Spec/4 record describing the given fields.
func ExtraBytesVlr(descriptors []ExtraByteDescriptor) Vlr {
	data := make([]byte, len(descriptors)*extraByteDescriptorSize)
	for i, d := range descriptors {
		buf := data[i*extraByteDescriptorSize:]
		buf[2] = uint8(d.DataType)
		buf[3] = d.Options
		putFixedString(buf[4:36], d.Name)
		// no_data, min, max are left zero: this library does not
		// compute per-field statistics.
		binary.LittleEndian.PutUint64(buf[112:], math.Float64bits(d.Scale))
		binary.LittleEndian.PutUint64(buf[136:], math.Float64bits(d.Offset))
		putFixedString(buf[160:192], d.Description)
	}
	return Vlr{
		UserID:      SpecUserID,
		RecordID:    ExtraBytesRecordID,
		Description: "extra bytes",
		Data:        data,
	}
}

// ParseExtraBytesVlr decodes a LASF_Spec/4 payload into field descriptors.
// The payload must be a whole number of 192-byte descriptors.
func ParseExtraBytesVlr(v Vlr) ([]ExtraByteDescriptor, error) {
	if len(v.Data)%extraByteDescriptorSize != 0 {
		return nil, fmt.Errorf("%w: extra bytes payload of %d bytes is not a multiple of %d",
			ErrInvalidVlr, len(v.Data), extraByteDescriptorSize)
	}
	descriptors := make([]ExtraByteDescriptor, 0, len(v.Data)/extraByteDescriptorSize)
	for i := 0; i < len(v.Data); i += extraByteDescriptorSize {
		buf := v.Data[i : i+extraByteDescriptorSize]
		descriptors = append(descriptors, ExtraByteDescriptor{
			DataType:    ExtraBytesDataType(buf[2]),
			Options:     buf[3],
			Name:        nulTerminated(buf[4:36]),
			Scale:       math.Float64frombits(binary.LittleEndian.Uint64(buf[112:])),
			Offset:      math.Float64frombits(binary.LittleEndian.Uint64(buf[136:])),
			Description: nulTerminated(buf[160:192]),
		})
	}
	return descriptors, nil
}

// ExtraBytesLength sums the field widths of a schema, the value the header's
// record length must account for beyond the format's fixed fields.
func ExtraBytesLength(descriptors []ExtraByteDescriptor) uint16 {
	var n int
	for _, d := range descriptors {
		n += d.ByteSize()
	}
	return uint16(n)
}

// ExtraByteValue extracts the i-th schema field from a point's extra bytes as
// a float64, applying the descriptor's scale and offset.
func ExtraByteValue(p Point, descriptors []ExtraByteDescriptor, i int) (float64, error) {
	if i < 0 || i >= len(descriptors) {
		return 0, fmt.Errorf("las: extra byte field %d of %d", i, len(descriptors))
	}
	start := 0
	for _, d := range descriptors[:i] {
		start += d.ByteSize()
	}
	d := descriptors[i]
	end := start + d.ByteSize()
	if end > len(p.ExtraBytes) {
		return 0, fmt.Errorf("%w: field %q needs bytes %d-%d, point has %d",
			ErrExtraBytesLengthMismatch, d.Name, start, end, len(p.ExtraBytes))
	}
	buf := p.ExtraBytes[start:end]
	var value float64
	switch d.DataType {
	case UnsignedChar:
		value = float64(buf[0])
	case Char:
		value = float64(int8(buf[0]))
	case UnsignedShort:
		value = float64(binary.LittleEndian.Uint16(buf))
	case Short:
		value = float64(int16(binary.LittleEndian.Uint16(buf)))
	case UnsignedLong:
		value = float64(binary.LittleEndian.Uint32(buf))
	case Long:
		value = float64(int32(binary.LittleEndian.Uint32(buf)))
	case UnsignedLongLong:
		value = float64(binary.LittleEndian.Uint64(buf))
	case LongLong:
		value = float64(int64(binary.LittleEndian.Uint64(buf)))
	case Float:
		value = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	case Double:
		value = math.Float64frombits(binary.LittleEndian.Uint64(buf))
	default:
		return 0, nil
	}
	scale := d.Scale
	if scale == 0 {
		scale = 1
	}
	return value*scale + d.Offset, nil
}
