package las

import (
	"errors"
	"reflect"
	"testing"
)

// samplePoint builds a point exercising every field a format can carry; the
// fields the format cannot carry are zeroed so the decoded record can be
// compared directly. Coordinates come out of the transforms so the comparison
// can be exact.
func samplePoint(f Format, transforms Transforms) Point {
	p := Point{
		X:                transforms.X.Real(3602811),
		Y:                transforms.Y.Real(4920487),
		Z:                transforms.Z.Real(42658),
		Intensity:        228,
		ReturnNumber:     2,
		NumberOfReturns:  3,
		ScanDirection:    LeftToRight,
		EdgeOfFlightLine: true,
		Classification:   5,
		Synthetic:        true,
		Withheld:         true,
		UserData:         117,
		PointSourceID:    7326,
		ExtraBytes:       make([]byte, f.ExtraBytes),
	}
	copy(p.ExtraBytes, []byte{0xde, 0xad, 0xbe, 0xef})

	if f.IsExtended {
		p.ScannerChannel = 2
		p.Classification = 201
		p.Overlap = true
		p.ScanAngle = float32(-2500) * scanAngleScale
	} else {
		p.ScanAngle = -15
	}
	if f.HasGPSTime {
		p.GPSTime = 245381.7
	}
	if f.HasColor {
		p.Color = Color{Red: 65280, Green: 2932, Blue: 127}
	}
	if f.HasNIR {
		p.NIR = 3344
	}
	if f.HasWaveform {
		p.Waveform = Waveform{
			DescriptorIndex:     3,
			ByteOffset:          102410,
			PacketSize:          256,
			ReturnPointLocation: 12.5,
			XT:                  0.1,
			YT:                  -0.2,
			ZT:                  0.97,
		}
	}
	return p
}

func TestEncodePoint_RoundTrip_AllFormats(t *testing.T) {
	transforms := Transforms{
		X: Transform{Scale: 0.01, Offset: 600000},
		Y: Transform{Scale: 0.01, Offset: 800000},
		Z: Transform{Scale: 0.01},
	}

	for id := uint8(0); id <= 10; id++ {
		format, err := NewFormat(id)
		if err != nil {
			t.Fatal(err)
		}
		format.ExtraBytes = 4

		want := samplePoint(format, transforms)
		record, err := EncodePoint(want, format, transforms)
		if err != nil {
			t.Fatalf("format %d: encode failed: %v", id, err)
		}
		if len(record) != int(format.RecordLength()) {
			t.Fatalf("format %d: record is %d bytes, expected %d",
				id, len(record), format.RecordLength())
		}

		got, err := DecodePoint(record, format, transforms)
		if err != nil {
			t.Fatalf("format %d: decode failed: %v", id, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("format %d: round trip mismatch:\ngot  %+v\nwant %+v", id, got, want)
		}
	}
}

func TestEncodePoint_ExtraBytesMismatch(t *testing.T) {
	format, _ := NewFormat(0)
	format.ExtraBytes = 4

	_, err := EncodePoint(Point{}, format, DefaultTransforms())
	if !errors.Is(err, ErrExtraBytesLengthMismatch) {
		t.Errorf("expected ErrExtraBytesLengthMismatch, got %v", err)
	}
}

func TestDecodePoint_ShortBuffer(t *testing.T) {
	format, _ := NewFormat(1)

	_, err := DecodePoint(make([]byte, 20), format, DefaultTransforms())
	if !errors.Is(err, ErrInvalidPointRecordLength) {
		t.Errorf("expected ErrInvalidPointRecordLength, got %v", err)
	}
}

func TestEncodePoint_LegacyOverlap(t *testing.T) {
	// Formats 0-5 have no overlap bit; the flag becomes class code 12.
	format, _ := NewFormat(0)
	p := Point{Classification: 5, Overlap: true}

	record, err := EncodePoint(p, format, DefaultTransforms())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodePoint(record, format, DefaultTransforms())
	if err != nil {
		t.Fatal(err)
	}
	if got.Classification != 12 || !got.Overlap {
		t.Errorf("classification %d overlap %v, expected 12 true", got.Classification, got.Overlap)
	}
}

func TestEncodePoint_ExtendedOverlapKeepsClassification(t *testing.T) {
	format, _ := NewFormat(6)
	p := Point{Classification: 5, Overlap: true}

	record, err := EncodePoint(p, format, DefaultTransforms())
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodePoint(record, format, DefaultTransforms())
	if err != nil {
		t.Fatal(err)
	}
	if got.Classification != 5 || !got.Overlap {
		t.Errorf("classification %d overlap %v, expected 5 true", got.Classification, got.Overlap)
	}
}

func TestPoint_Matches(t *testing.T) {
	legacy, _ := NewFormat(0)
	extended, _ := NewFormat(6)

	cases := []struct {
		name   string
		point  Point
		format Format
		want   bool
	}{
		{"plain", Point{ReturnNumber: 1, NumberOfReturns: 1}, legacy, true},
		{"return too wide", Point{ReturnNumber: 9}, legacy, false},
		{"return fits extended", Point{ReturnNumber: 9}, extended, true},
		{"class too wide", Point{Classification: 40}, legacy, false},
		{"class fits extended", Point{Classification: 40}, extended, true},
		{"channel on legacy", Point{ScannerChannel: 1}, legacy, false},
		{"extra bytes mismatch", Point{ExtraBytes: []byte{1}}, legacy, false},
	}
	for _, c := range cases {
		if got := c.point.Matches(c.format); got != c.want {
			t.Errorf("%s: Matches = %v, expected %v", c.name, got, c.want)
		}
	}
}
