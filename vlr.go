package las

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
)

const (
	vlrHeaderSize  = 54
	evlrHeaderSize = 60
)

// Well-known VLR identities.
const (
	// ProjectionUserID marks coordinate reference system records.
	ProjectionUserID = "LASF_Projection"
	// SpecUserID marks records defined by the LAS specification itself.
	SpecUserID = "LASF_Spec"

	// WKTRecordID is the OGC coordinate system WKT record.
	WKTRecordID = 2112
	// GeoKeyDirectoryRecordID, GeoDoubleParamsRecordID, and
	// GeoASCIIParamsRecordID form the GeoTIFF CRS triplet.
	GeoKeyDirectoryRecordID = 34735
	GeoDoubleParamsRecordID = 34736
	GeoASCIIParamsRecordID  = 34737
	// ExtraBytesRecordID carries the schema of per-point extra bytes.
	ExtraBytesRecordID = 4
)

// Vlr is a variable length record: typed metadata keyed by user and record
// id. The same structure serves both the VLR table between header and point
// data and the extended (EVLR) table after it; records whose payload exceeds
// the 16-bit VLR length limit are placed in the EVLR table automatically at
// write time.
type Vlr struct {
	// UserID identifies the issuing authority, e.g. "LASF_Projection".
	UserID string
	// RecordID selects the record type within the user id's namespace.
	RecordID uint16
	// Description is free text.
	Description string
	// Data is the payload.
	Data []byte
}

// HasLargeData reports whether the payload only fits an extended record.
func (v Vlr) HasLargeData() bool {
	return len(v.Data) > math.MaxUint16
}

// TotalLength returns the record's on-disk size, header included, when
// written as a regular VLR (extended false) or an EVLR (extended true).
func (v Vlr) TotalLength(extended bool) uint64 {
	if extended {
		return evlrHeaderSize + uint64(len(v.Data))
	}
	return vlrHeaderSize + uint64(len(v.Data))
}

// isProjection reports whether the record carries CRS data.
func (v Vlr) isProjection() bool {
	if !strings.EqualFold(v.UserID, ProjectionUserID) {
		return false
	}
	switch v.RecordID {
	case WKTRecordID, GeoKeyDirectoryRecordID, GeoDoubleParamsRecordID, GeoASCIIParamsRecordID:
		return true
	}
	return false
}

// readVlr reads one regular VLR from the stream.
func readVlr(r io.Reader) (Vlr, error) {
	var hdr [vlrHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Vlr{}, fmt.Errorf("%w: %v", ErrInvalidVlr, err)
	}
	v := Vlr{
		UserID:      nulTerminated(hdr[2:18]),
		RecordID:    binary.LittleEndian.Uint16(hdr[18:]),
		Description: nulTerminated(hdr[22:54]),
	}
	length := binary.LittleEndian.Uint16(hdr[20:])
	v.Data = make([]byte, length)
	if _, err := io.ReadFull(r, v.Data); err != nil {
		return Vlr{}, fmt.Errorf("%w: payload of %s/%d: %v", ErrInvalidVlr, v.UserID, v.RecordID, err)
	}
	return v, nil
}

// readEvlr reads one extended VLR from the stream.
func readEvlr(r io.Reader) (Vlr, error) {
	var hdr [evlrHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Vlr{}, fmt.Errorf("%w: %v", ErrInvalidVlr, err)
	}
	v := Vlr{
		UserID:      nulTerminated(hdr[2:18]),
		RecordID:    binary.LittleEndian.Uint16(hdr[18:]),
		Description: nulTerminated(hdr[28:60]),
	}
	length := binary.LittleEndian.Uint64(hdr[20:])
	if length > math.MaxInt32 {
		return Vlr{}, fmt.Errorf("%w: evlr payload of %d bytes", ErrInvalidVlr, length)
	}
	v.Data = make([]byte, length)
	if _, err := io.ReadFull(r, v.Data); err != nil {
		return Vlr{}, fmt.Errorf("%w: payload of %s/%d: %v", ErrInvalidVlr, v.UserID, v.RecordID, err)
	}
	return v, nil
}

// writeVlr writes the record as a regular VLR. The payload must fit the
// 16-bit length field; splitVlrs takes care of that before serialization.
func (v Vlr) writeVlr(w io.Writer) error {
	if v.HasLargeData() {
		return fmt.Errorf("%w: payload of %d bytes exceeds the VLR limit", ErrInvalidVlr, len(v.Data))
	}
	var hdr [vlrHeaderSize]byte
	putFixedString(hdr[2:18], v.UserID)
	binary.LittleEndian.PutUint16(hdr[18:], v.RecordID)
	binary.LittleEndian.PutUint16(hdr[20:], uint16(len(v.Data)))
	putFixedString(hdr[22:54], v.Description)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(v.Data)
	return err
}

// writeEvlr writes the record as an extended VLR.
func (v Vlr) writeEvlr(w io.Writer) error {
	var hdr [evlrHeaderSize]byte
	putFixedString(hdr[2:18], v.UserID)
	binary.LittleEndian.PutUint16(hdr[18:], v.RecordID)
	binary.LittleEndian.PutUint64(hdr[20:], uint64(len(v.Data)))
	putFixedString(hdr[28:60], v.Description)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(v.Data)
	return err
}

// splitVlrs distributes the header's records between the VLR and EVLR
// tables. Oversized payloads are promoted to the EVLR table; on versions
// without EVLRs, extended records that fit are demoted into the VLR table
// instead. Oversized payloads on a version without EVLRs cannot be placed.
func splitVlrs(version Version, vlrs, evlrs []Vlr) (regular, extended []Vlr, err error) {
	for _, v := range evlrs {
		if version.HasExtendedCounts() || v.HasLargeData() {
			extended = append(extended, v)
		} else {
			regular = append(regular, v)
		}
	}
	for _, v := range vlrs {
		if v.HasLargeData() {
			extended = append(extended, v)
		} else {
			regular = append(regular, v)
		}
	}
	if len(extended) > 0 && !version.HasExtendedCounts() {
		return nil, nil, fmt.Errorf("%w: %s cannot carry extended records", ErrInvalidVlr, version)
	}
	return regular, extended, nil
}
