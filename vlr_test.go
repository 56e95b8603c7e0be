package las

import (
	"bytes"
	"errors"
	"testing"
)

func TestVlr_RoundTrip(t *testing.T) {
	want := Vlr{
		UserID:      "orb-las test",
		RecordID:    9001,
		Description: "payload round trip",
		Data:        []byte{1, 2, 3, 4, 5},
	}

	var buf bytes.Buffer
	if err := want.writeVlr(&buf); err != nil {
		t.Fatalf("writeVlr failed: %v", err)
	}
	if buf.Len() != int(want.TotalLength(false)) {
		t.Fatalf("wrote %d bytes, expected %d", buf.Len(), want.TotalLength(false))
	}

	got, err := readVlr(&buf)
	if err != nil {
		t.Fatalf("readVlr failed: %v", err)
	}
	if got.UserID != want.UserID || got.RecordID != want.RecordID ||
		got.Description != want.Description || !bytes.Equal(got.Data, want.Data) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestEvlr_RoundTrip(t *testing.T) {
	want := Vlr{
		UserID:      "orb-las test",
		RecordID:    9002,
		Description: "extended payload",
		Data:        bytes.Repeat([]byte{0xab}, 70000),
	}
	if !want.HasLargeData() {
		t.Fatal("70000 bytes should exceed the VLR limit")
	}

	var buf bytes.Buffer
	if err := want.writeEvlr(&buf); err != nil {
		t.Fatalf("writeEvlr failed: %v", err)
	}
	got, err := readEvlr(&buf)
	if err != nil {
		t.Fatalf("readEvlr failed: %v", err)
	}
	if got.RecordID != want.RecordID || !bytes.Equal(got.Data, want.Data) {
		t.Error("round trip mismatch")
	}
}

func TestVlr_WriteOversized(t *testing.T) {
	v := Vlr{Data: make([]byte, 70000)}
	err := v.writeVlr(&bytes.Buffer{})
	if !errors.Is(err, ErrInvalidVlr) {
		t.Errorf("expected ErrInvalidVlr, got %v", err)
	}
}

func TestReadVlr_TruncatedPayload(t *testing.T) {
	v := Vlr{UserID: "x", Data: []byte{1, 2, 3}}
	var buf bytes.Buffer
	if err := v.writeVlr(&buf); err != nil {
		t.Fatal(err)
	}
	short := buf.Bytes()[:buf.Len()-2]

	_, err := readVlr(bytes.NewReader(short))
	if !errors.Is(err, ErrInvalidVlr) {
		t.Errorf("expected ErrInvalidVlr, got %v", err)
	}
}

func TestSplitVlrs_PromotesLargePayloads(t *testing.T) {
	small := Vlr{RecordID: 1, Data: []byte{1}}
	large := Vlr{RecordID: 2, Data: make([]byte, 70000)}

	regular, extended, err := splitVlrs(V14, []Vlr{small, large}, nil)
	if err != nil {
		t.Fatalf("splitVlrs failed: %v", err)
	}
	if len(regular) != 1 || regular[0].RecordID != 1 {
		t.Errorf("regular table %+v", regular)
	}
	if len(extended) != 1 || extended[0].RecordID != 2 {
		t.Errorf("extended table %+v", extended)
	}
}

func TestSplitVlrs_DemotesOnOldVersions(t *testing.T) {
	evlr := Vlr{RecordID: 3, Data: []byte{1}}

	regular, extended, err := splitVlrs(V12, nil, []Vlr{evlr})
	if err != nil {
		t.Fatalf("splitVlrs failed: %v", err)
	}
	if len(extended) != 0 || len(regular) != 1 || regular[0].RecordID != 3 {
		t.Errorf("regular %+v extended %+v", regular, extended)
	}
}

func TestSplitVlrs_LargePayloadNeedsEvlrs(t *testing.T) {
	large := Vlr{Data: make([]byte, 70000)}

	_, _, err := splitVlrs(V12, []Vlr{large}, nil)
	if !errors.Is(err, ErrInvalidVlr) {
		t.Errorf("expected ErrInvalidVlr, got %v", err)
	}
}
