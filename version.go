package las

import "fmt"

// Version is a LAS specification version. The zero value is not a valid
// version; use V12 or one of its siblings, or let the writer pick one.
type Version struct {
	Major uint8
	Minor uint8
}

// The five published LAS versions.
var (
	V10 = Version{1, 0}
	V11 = Version{1, 1}
	V12 = Version{1, 2}
	V13 = Version{1, 3}
	V14 = Version{1, 4}
)

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Valid reports whether this is a published LAS version.
func (v Version) Valid() bool {
	return v.Major == 1 && v.Minor <= 4
}

// Less reports whether v precedes other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

// HeaderSize returns the size in bytes of the fixed header block for this
// version: 227 through 1.2, 235 for 1.3, 375 for 1.4.
func (v Version) HeaderSize() uint16 {
	switch {
	case v.Minor <= 2:
		return 227
	case v.Minor == 3:
		return 235
	default:
		return 375
	}
}

// HasWaveformOffset reports whether the header carries the start-of-waveform
// field (1.3 and later).
func (v Version) HasWaveformOffset() bool {
	return v.Major == 1 && v.Minor >= 3
}

// HasExtendedCounts reports whether the header carries 64-bit point counts
// and the EVLR directory fields (1.4 only).
func (v Version) HasExtendedCounts() bool {
	return v.Major == 1 && v.Minor >= 4
}

// requiresPointDataStartSignature reports whether point data must be preceded
// by the 0xCC 0xDD marker. Only 1.0 requires it.
func (v Version) requiresPointDataStartSignature() bool {
	return v == V10
}

// SupportsFormat reports whether this version may carry the given point
// format: color needs 1.2, waveforms 1.3, the extended formats 1.4.
func (v Version) SupportsFormat(f Format) bool {
	if v.Major != 1 {
		return false
	}
	switch v.Minor {
	case 0, 1:
		return !f.HasColor && !f.IsExtended && !f.HasWaveform && !f.HasNIR
	case 2:
		return !f.IsExtended && !f.HasWaveform && !f.HasNIR
	case 3:
		return !f.IsExtended && !f.HasNIR
	case 4:
		return true
	default:
		return false
	}
}

// MinimumVersion returns the lowest LAS version that can carry the given
// point format. Formats 6-10 need 1.4, waveform formats 4-5 need 1.3, color
// formats 2-3 need 1.2, and formats 0-1 go back to 1.0.
func MinimumVersion(f Format) Version {
	for _, v := range []Version{V10, V11, V12, V13, V14} {
		if v.SupportsFormat(f) {
			return v
		}
	}
	return V14
}
