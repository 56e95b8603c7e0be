package las

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestExtraBytesVlr_RoundTrip(t *testing.T) {
	want := []ExtraByteDescriptor{
		{Name: "amplitude", Description: "echo amplitude", DataType: UnsignedShort, Scale: 0.1},
		{Name: "reflectance", DataType: Float},
		{Name: "blob", DataType: Undocumented, Options: 3},
	}

	v := ExtraBytesVlr(want)
	if v.UserID != SpecUserID || v.RecordID != ExtraBytesRecordID {
		t.Fatalf("identity %s/%d", v.UserID, v.RecordID)
	}
	if len(v.Data) != 3*extraByteDescriptorSize {
		t.Fatalf("payload %d bytes, expected %d", len(v.Data), 3*extraByteDescriptorSize)
	}

	got, err := ParseExtraBytesVlr(v)
	if err != nil {
		t.Fatalf("ParseExtraBytesVlr failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("parsed %d descriptors, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("descriptor %d: %+v, expected %+v", i, got[i], want[i])
		}
	}
}

func TestParseExtraBytesVlr_BadLength(t *testing.T) {
	v := Vlr{UserID: SpecUserID, RecordID: ExtraBytesRecordID, Data: make([]byte, 100)}
	_, err := ParseExtraBytesVlr(v)
	if !errors.Is(err, ErrInvalidVlr) {
		t.Errorf("expected ErrInvalidVlr, got %v", err)
	}
}

func TestExtraBytesLength(t *testing.T) {
	descriptors := []ExtraByteDescriptor{
		{DataType: UnsignedShort},
		{DataType: Double},
		{DataType: Undocumented, Options: 3},
	}
	if got := ExtraBytesLength(descriptors); got != 13 {
		t.Errorf("length %d, expected 13", got)
	}
}

func TestExtraByteValue(t *testing.T) {
	descriptors := []ExtraByteDescriptor{
		{Name: "height", DataType: UnsignedShort, Scale: 0.01, Offset: 100},
		{Name: "count", DataType: UnsignedChar},
	}

	tail := make([]byte, 3)
	binary.LittleEndian.PutUint16(tail[0:], 2500)
	tail[2] = 7
	p := Point{ExtraBytes: tail}

	height, err := ExtraByteValue(p, descriptors, 0)
	if err != nil {
		t.Fatalf("ExtraByteValue failed: %v", err)
	}
	if height != 125 {
		t.Errorf("height %g, expected 125", height)
	}

	count, err := ExtraByteValue(p, descriptors, 1)
	if err != nil {
		t.Fatalf("ExtraByteValue failed: %v", err)
	}
	if count != 7 {
		t.Errorf("count %g, expected 7", count)
	}
}

func TestExtraByteValue_OutOfRange(t *testing.T) {
	descriptors := []ExtraByteDescriptor{{Name: "height", DataType: Double}}
	p := Point{ExtraBytes: []byte{1, 2}}

	if _, err := ExtraByteValue(p, descriptors, 0); !errors.Is(err, ErrExtraBytesLengthMismatch) {
		t.Errorf("expected ErrExtraBytesLengthMismatch, got %v", err)
	}
	if _, err := ExtraByteValue(p, descriptors, 3); err == nil {
		t.Error("expected an error for a field index out of range")
	}
}
