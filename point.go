package las

// ScanDirection is the direction the scanner mirror was traveling when the
// pulse was emitted.
type ScanDirection uint8

// The two scan directions.
const (
	RightToLeft ScanDirection = 0
	LeftToRight ScanDirection = 1
)

// Color is a 16-bit-per-channel RGB sample attached to a point in formats
// 2, 3, 5, 7, 8, and 10.
type Color struct {
	Red   uint16
	Green uint16
	Blue  uint16
}

// Waveform locates a point's waveform packet in formats 4, 5, 9, and 10.
type Waveform struct {
	// DescriptorIndex selects the waveform packet descriptor VLR. Zero
	// means no waveform data is associated with the point.
	DescriptorIndex uint8
	// ByteOffset is the location of the packet relative to the start of
	// the waveform data record or external file.
	ByteOffset uint64
	// PacketSize is the packet length in bytes.
	PacketSize uint32
	// ReturnPointLocation is the offset in picoseconds from the first
	// digitized value to the detected return.
	ReturnPointLocation float32
	// XT, YT, and ZT parametrize the line along the waveform.
	XT, YT, ZT float32
}

// Point is the public unit of LAS data. Coordinates are real-world values;
// the fixed-point integers actually stored in the file are derived through
// the header's Transforms.
type Point struct {
	X float64
	Y float64
	Z float64

	Intensity        uint16
	ReturnNumber     uint8
	NumberOfReturns  uint8
	ScanDirection    ScanDirection
	EdgeOfFlightLine bool

	// Classification is the ASPRS class code. Formats 0-5 store five bits
	// (0-31), formats 6-10 a full byte.
	Classification uint8
	Synthetic      bool
	KeyPoint       bool
	Withheld       bool
	// Overlap marks swath-overlap points. Formats 6-10 store it as a flag
	// bit; formats 0-5 express it as classification code 12.
	Overlap bool
	// ScannerChannel identifies the scanner head (0-3). Always zero for
	// formats 0-5.
	ScannerChannel uint8

	// ScanAngle is the pulse angle in degrees, nadir zero. Formats 0-5
	// store it as a whole-degree rank, formats 6-10 in 0.006 degree
	// increments.
	ScanAngle float32

	UserData      uint8
	PointSourceID uint16

	// GPSTime is meaningful only for formats that carry it.
	GPSTime float64
	// Color is meaningful only for formats that carry it.
	Color Color
	// NIR is the near-infrared channel, formats 8 and 10.
	NIR uint16
	// Waveform is meaningful only for formats that carry it.
	Waveform Waveform

	// ExtraBytes is the user-defined tail of the record. Its length must
	// equal the format's ExtraBytes when encoding.
	ExtraBytes []byte
}
