package las

import "fmt"

// Format describes one of the eleven standardized point record layouts,
// plus any extra bytes appended to each record. The set of formats is closed
// by the LAS specification, so everything here is table lookup.
type Format struct {
	// ID is the point data record format number, 0 through 10.
	ID uint8
	// HasGPSTime is true when each record carries a GPS time stamp.
	HasGPSTime bool
	// HasColor is true when each record carries 16-bit RGB channels.
	HasColor bool
	// HasNIR is true when each record carries a near-infrared channel.
	HasNIR bool
	// HasWaveform is true when each record carries a waveform packet.
	HasWaveform bool
	// IsExtended is true for formats 6-10, which use the three-byte flag
	// block with wider return numbers, full-byte classification, and a
	// scanner channel.
	IsExtended bool
	// ExtraBytes is the number of user-defined bytes trailing each record.
	ExtraBytes uint16
}

// NewFormat returns the point format for the given id, or
// ErrUnsupportedPointFormat for ids outside 0-10.
func NewFormat(id uint8) (Format, error) {
	if id > 10 {
		return Format{}, fmt.Errorf("%w: %d", ErrUnsupportedPointFormat, id)
	}
	f := Format{ID: id}
	switch id {
	case 1, 3, 4, 5:
		f.HasGPSTime = true
	}
	switch id {
	case 2, 3, 5, 7, 8, 10:
		f.HasColor = true
	}
	switch id {
	case 4, 5, 9, 10:
		f.HasWaveform = true
	}
	switch id {
	case 8, 10:
		f.HasNIR = true
	}
	if id >= 6 {
		f.IsExtended = true
		f.HasGPSTime = true
	}
	return f, nil
}

// BaseLength returns the fixed byte length of a record in this format,
// excluding extra bytes.
func (f Format) BaseLength() uint16 {
	var n uint16 = 20
	if f.IsExtended {
		n = 22
	}
	if f.HasGPSTime {
		n += 8
	}
	if f.HasColor {
		n += 6
	}
	if f.HasNIR {
		n += 2
	}
	if f.HasWaveform {
		n += 29
	}
	return n
}

// RecordLength returns the full byte length of a record, extra bytes
// included. This is the value written into the header.
func (f Format) RecordLength() uint16 {
	return f.BaseLength() + f.ExtraBytes
}

// MaxReturnNumber returns the largest return number the flag block can hold:
// 7 for the two-byte block, 15 for the three-byte block.
func (f Format) MaxReturnNumber() uint8 {
	if f.IsExtended {
		return 15
	}
	return 7
}

// MaxClassification returns the largest classification code the format can
// hold: 31 for formats 0-5, 255 for formats 6-10.
func (f Format) MaxClassification() uint8 {
	if f.IsExtended {
		return 255
	}
	return 31
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return fmt.Sprintf("point format %d", f.ID)
}
