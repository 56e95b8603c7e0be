package las

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// CRS is a coordinate reference system extracted from the (E)VLR directory.
// LAS stores it either as an OGC WKT string or as a GeoTIFF key set; this
// package round-trips both and extracts EPSG codes, but performs no geodetic
// math.
type CRS struct {
	// WKT is the well-known-text definition. Empty when the CRS came from
	// GeoTIFF keys.
	WKT string
	// GeoKeys are the GeoTIFF key entries. Empty when the CRS is WKT.
	GeoKeys []GeoKey
}

// GeoKey is one GeoTIFF key entry. Location tells which of the value fields
// is meaningful: 0 for UShort, GeoDoubleParamsRecordID for Doubles,
// GeoASCIIParamsRecordID for ASCII.
type GeoKey struct {
	ID       uint16
	Location uint16
	UShort   uint16
	Doubles  []float64
	ASCII    string
}

// GeoTIFF key ids carrying EPSG codes.
const (
	geoKeyModelType    = 1024
	geoKeyProjectedCS  = 3072
	geoKeyGeographicCS = 2048
	geoKeyVerticalCS   = 4096
	geoKeyUserDefined  = 32767
)

// FindCRS extracts the coordinate reference system from a header's VLR and
// EVLR directory. A WKT record is preferred when the header's WKT flag is
// set; otherwise the GeoTIFF key triplet is reconstructed. No CRS at all
// returns nil, not an error; CRS is optional.
func FindCRS(h *Header) (*CRS, error) {
	var wkt, keyDir, doubles, ascii *Vlr
	for _, vlrs := range [][]Vlr{h.Vlrs, h.Evlrs} {
		for i := range vlrs {
			v := &vlrs[i]
			if !strings.EqualFold(v.UserID, ProjectionUserID) {
				continue
			}
			switch v.RecordID {
			case WKTRecordID:
				wkt = v
			case GeoKeyDirectoryRecordID:
				keyDir = v
			case GeoDoubleParamsRecordID:
				doubles = v
			case GeoASCIIParamsRecordID:
				ascii = v
			}
		}
	}
	if wkt != nil && (h.WKTCRS || keyDir == nil) {
		return &CRS{WKT: nulTerminated(wkt.Data)}, nil
	}
	if keyDir == nil {
		return nil, nil
	}
	keys, err := parseGeoKeys(keyDir.Data, doubles, ascii)
	if err != nil {
		return nil, err
	}
	return &CRS{GeoKeys: keys}, nil
}

// parseGeoKeys decodes the GeoTIFF key directory, resolving double and ASCII
// values from their companion records.
func parseGeoKeys(dir []byte, doubles, ascii *Vlr) ([]GeoKey, error) {
	if len(dir) < 8 {
		return nil, fmt.Errorf("%w: geotiff key directory of %d bytes", ErrInvalidVlr, len(dir))
	}
	count := int(binary.LittleEndian.Uint16(dir[6:]))
	if len(dir) < 8+count*8 {
		return nil, fmt.Errorf("%w: geotiff key directory declares %d keys in %d bytes",
			ErrInvalidVlr, count, len(dir))
	}
	keys := make([]GeoKey, 0, count)
	for i := 0; i < count; i++ {
		entry := dir[8+i*8:]
		key := GeoKey{
			ID:       binary.LittleEndian.Uint16(entry),
			Location: binary.LittleEndian.Uint16(entry[2:]),
		}
		n := int(binary.LittleEndian.Uint16(entry[4:]))
		offset := int(binary.LittleEndian.Uint16(entry[6:]))
		switch key.Location {
		case 0:
			key.UShort = uint16(offset)
		case GeoDoubleParamsRecordID:
			if doubles == nil || len(doubles.Data) < (offset+n)*8 {
				return nil, fmt.Errorf("%w: geotiff key %d points outside the double params record",
					ErrInvalidVlr, key.ID)
			}
			key.Doubles = make([]float64, n)
			for j := range key.Doubles {
				key.Doubles[j] = math.Float64frombits(
					binary.LittleEndian.Uint64(doubles.Data[(offset+j)*8:]))
			}
		case GeoASCIIParamsRecordID:
			if ascii == nil || len(ascii.Data) < offset+n {
				return nil, fmt.Errorf("%w: geotiff key %d points outside the ascii params record",
					ErrInvalidVlr, key.ID)
			}
			key.ASCII = string(ascii.Data[offset : offset+n])
		default:
			return nil, fmt.Errorf("%w: geotiff key %d has unknown location %d",
				ErrInvalidVlr, key.ID, key.Location)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// EPSG extracts the horizontal and optional vertical EPSG codes. The second
// return is zero when no vertical CRS is present; ok is false when no code
// could be recovered (including user-defined GeoTIFF CRSes).
func (c *CRS) EPSG() (horizontal, vertical uint16, ok bool) {
	if c == nil {
		return 0, 0, false
	}
	if c.WKT != "" {
		return epsgFromWkt(c.WKT)
	}
	for _, key := range c.GeoKeys {
		switch key.ID {
		case geoKeyModelType:
			if key.Location == 0 && key.UShort == geoKeyUserDefined {
				return 0, 0, false
			}
		case geoKeyProjectedCS, geoKeyGeographicCS:
			if key.Location == 0 && key.UShort != geoKeyUserDefined {
				horizontal = key.UShort
			}
		case geoKeyVerticalCS:
			if key.Location == 0 {
				vertical = key.UShort
			}
		}
	}
	return horizontal, vertical, horizontal != 0
}

// epsgFromWkt pulls the authority codes out of a WKT string: the last number
// of the horizontal section and, when a VERT_CS/VERTCRS section exists, the
// last number of that section.
func epsgFromWkt(wkt string) (horizontal, vertical uint16, ok bool) {
	horizontalPart, verticalPart, found := strings.Cut(wkt, "VERT")
	horizontal = trailingCode(horizontalPart)
	if found {
		vertical = trailingCode(verticalPart)
	}
	return horizontal, vertical, horizontal != 0
}

// trailingCode finds the last run of digits in s and parses it, reading at
// most eight digits.
func trailingCode(s string) uint16 {
	end := len(s)
	for end > 0 && !isDigit(s[end-1]) {
		end--
	}
	var code, power uint64
	for i := end - 1; i >= 0 && power < 8 && isDigit(s[i]); i-- {
		code += uint64(s[i]-'0') * pow10(power)
		power++
	}
	if code > math.MaxUint16 {
		return 0
	}
	return uint16(code)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func pow10(n uint64) uint64 {
	result := uint64(1)
	for ; n > 0; n-- {
		result *= 10
	}
	return result
}

// WKTVlr builds the OGC WKT CRS record for the given definition. The payload
// is NUL terminated per the LAS specification.
func WKTVlr(wkt string) Vlr {
	return Vlr{
		UserID:      ProjectionUserID,
		RecordID:    WKTRecordID,
		Description: "OGC WKT coordinate system",
		Data:        append([]byte(wkt), 0),
	}
}
