package las

import (
	"encoding/binary"
	"fmt"
	"math"
)

// scanAngleScale is the size in degrees of one scan angle increment in the
// extended formats.
const scanAngleScale float32 = 0.006

// overlapClassification is the legacy class code that marks overlap points in
// formats 0-5, which have no overlap flag bit.
const overlapClassification = 12

// DecodePoint decodes one point record. The buffer must hold at least the
// format's base length; whatever follows the fixed fields becomes the point's
// extra bytes. Coordinates are dequantized through the transforms.
func DecodePoint(buf []byte, format Format, transforms Transforms) (Point, error) {
	var p Point
	if len(buf) < int(format.BaseLength()) {
		return p, fmt.Errorf("%w: got %d bytes, format %d needs %d",
			ErrInvalidPointRecordLength, len(buf), format.ID, format.BaseLength())
	}

	p.X = transforms.X.Real(int32(binary.LittleEndian.Uint32(buf[0:])))
	p.Y = transforms.Y.Real(int32(binary.LittleEndian.Uint32(buf[4:])))
	p.Z = transforms.Z.Real(int32(binary.LittleEndian.Uint32(buf[8:])))
	p.Intensity = binary.LittleEndian.Uint16(buf[12:])

	var n int
	if format.IsExtended {
		n = decodeExtendedFlags(&p, buf[14:])
	} else {
		n = decodeLegacyFlags(&p, buf[14:])
	}
	n += 14

	if format.HasGPSTime {
		p.GPSTime = math.Float64frombits(binary.LittleEndian.Uint64(buf[n:]))
		n += 8
	}
	if format.HasColor {
		p.Color.Red = binary.LittleEndian.Uint16(buf[n:])
		p.Color.Green = binary.LittleEndian.Uint16(buf[n+2:])
		p.Color.Blue = binary.LittleEndian.Uint16(buf[n+4:])
		n += 6
	}
	if format.HasNIR {
		p.NIR = binary.LittleEndian.Uint16(buf[n:])
		n += 2
	}
	if format.HasWaveform {
		w := &p.Waveform
		w.DescriptorIndex = buf[n]
		w.ByteOffset = binary.LittleEndian.Uint64(buf[n+1:])
		w.PacketSize = binary.LittleEndian.Uint32(buf[n+9:])
		w.ReturnPointLocation = math.Float32frombits(binary.LittleEndian.Uint32(buf[n+13:]))
		w.XT = math.Float32frombits(binary.LittleEndian.Uint32(buf[n+17:]))
		w.YT = math.Float32frombits(binary.LittleEndian.Uint32(buf[n+21:]))
		w.ZT = math.Float32frombits(binary.LittleEndian.Uint32(buf[n+25:]))
		n += 29
	}
	if n < len(buf) {
		p.ExtraBytes = append([]byte(nil), buf[n:]...)
	}
	return p, nil
}

// decodeLegacyFlags unpacks the two-byte flag block of formats 0-5: return
// number and count in three bits each, classification in five, the
// synthetic/key-point/withheld flags in the top three. It returns the number
// of flag-block bytes plus the scan angle, user data, and point source fields
// that follow it.
func decodeLegacyFlags(p *Point, buf []byte) int {
	a, b := buf[0], buf[1]
	p.ReturnNumber = a & 7
	p.NumberOfReturns = a >> 3 & 7
	p.ScanDirection = ScanDirection(a >> 6 & 1)
	p.EdgeOfFlightLine = a>>7 == 1
	p.Classification = b & 0x1f
	p.Synthetic = b&0x20 != 0
	p.KeyPoint = b&0x40 != 0
	p.Withheld = b&0x80 != 0
	p.Overlap = p.Classification == overlapClassification
	p.ScanAngle = float32(int8(buf[2]))
	p.UserData = buf[3]
	p.PointSourceID = binary.LittleEndian.Uint16(buf[4:])
	return 6
}

// decodeExtendedFlags unpacks the three-byte flag block of formats 6-10 plus
// the user data, two-byte scan angle, and point source fields after it.
func decodeExtendedFlags(p *Point, buf []byte) int {
	a, b := buf[0], buf[1]
	p.ReturnNumber = a & 15
	p.NumberOfReturns = a >> 4 & 15
	p.Synthetic = b&1 != 0
	p.KeyPoint = b&2 != 0
	p.Withheld = b&4 != 0
	p.Overlap = b&8 != 0
	p.ScannerChannel = b >> 4 & 3
	p.ScanDirection = ScanDirection(b >> 6 & 1)
	p.EdgeOfFlightLine = b>>7 == 1
	p.Classification = buf[2]
	p.UserData = buf[3]
	p.ScanAngle = float32(int16(binary.LittleEndian.Uint16(buf[4:]))) * scanAngleScale
	p.PointSourceID = binary.LittleEndian.Uint16(buf[6:])
	return 8
}

// EncodePoint encodes one point record, always producing exactly the format's
// declared record length. The point's extra bytes must match the format's
// declared extra byte count.
func EncodePoint(p Point, format Format, transforms Transforms) ([]byte, error) {
	if len(p.ExtraBytes) != int(format.ExtraBytes) {
		return nil, fmt.Errorf("%w: point has %d, format declares %d",
			ErrExtraBytesLengthMismatch, len(p.ExtraBytes), format.ExtraBytes)
	}

	buf := make([]byte, format.RecordLength())
	binary.LittleEndian.PutUint32(buf[0:], uint32(transforms.X.Raw(p.X)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(transforms.Y.Raw(p.Y)))
	binary.LittleEndian.PutUint32(buf[8:], uint32(transforms.Z.Raw(p.Z)))
	binary.LittleEndian.PutUint16(buf[12:], p.Intensity)

	var n int
	if format.IsExtended {
		n = encodeExtendedFlags(p, buf[14:])
	} else {
		n = encodeLegacyFlags(p, buf[14:])
	}
	n += 14

	if format.HasGPSTime {
		binary.LittleEndian.PutUint64(buf[n:], math.Float64bits(p.GPSTime))
		n += 8
	}
	if format.HasColor {
		binary.LittleEndian.PutUint16(buf[n:], p.Color.Red)
		binary.LittleEndian.PutUint16(buf[n+2:], p.Color.Green)
		binary.LittleEndian.PutUint16(buf[n+4:], p.Color.Blue)
		n += 6
	}
	if format.HasNIR {
		binary.LittleEndian.PutUint16(buf[n:], p.NIR)
		n += 2
	}
	if format.HasWaveform {
		w := p.Waveform
		buf[n] = w.DescriptorIndex
		binary.LittleEndian.PutUint64(buf[n+1:], w.ByteOffset)
		binary.LittleEndian.PutUint32(buf[n+9:], w.PacketSize)
		binary.LittleEndian.PutUint32(buf[n+13:], math.Float32bits(w.ReturnPointLocation))
		binary.LittleEndian.PutUint32(buf[n+17:], math.Float32bits(w.XT))
		binary.LittleEndian.PutUint32(buf[n+21:], math.Float32bits(w.YT))
		binary.LittleEndian.PutUint32(buf[n+25:], math.Float32bits(w.ZT))
		n += 29
	}
	copy(buf[n:], p.ExtraBytes)
	return buf, nil
}

func encodeLegacyFlags(p Point, buf []byte) int {
	a := p.ReturnNumber&7 | p.NumberOfReturns&7<<3 | uint8(p.ScanDirection)&1<<6
	if p.EdgeOfFlightLine {
		a |= 0x80
	}
	class := p.Classification & 0x1f
	if p.Overlap {
		class = overlapClassification
	}
	b := class
	if p.Synthetic {
		b |= 0x20
	}
	if p.KeyPoint {
		b |= 0x40
	}
	if p.Withheld {
		b |= 0x80
	}
	buf[0] = a
	buf[1] = b
	buf[2] = byte(int8(roundHalfAway(float64(p.ScanAngle))))
	buf[3] = p.UserData
	binary.LittleEndian.PutUint16(buf[4:], p.PointSourceID)
	return 6
}

func encodeExtendedFlags(p Point, buf []byte) int {
	buf[0] = p.ReturnNumber&15 | p.NumberOfReturns&15<<4
	var b uint8
	if p.Synthetic {
		b |= 1
	}
	if p.KeyPoint {
		b |= 2
	}
	if p.Withheld {
		b |= 4
	}
	if p.Overlap {
		b |= 8
	}
	b |= p.ScannerChannel & 3 << 4
	b |= uint8(p.ScanDirection) & 1 << 6
	if p.EdgeOfFlightLine {
		b |= 0x80
	}
	buf[1] = b
	buf[2] = p.Classification
	buf[3] = p.UserData
	binary.LittleEndian.PutUint16(buf[4:], uint16(int16(roundHalfAway(float64(p.ScanAngle/scanAngleScale)))))
	binary.LittleEndian.PutUint16(buf[6:], p.PointSourceID)
	return 8
}

func roundHalfAway(x float64) int {
	return int(math.Round(x))
}

// Matches reports whether the point's optional attributes can survive a round
// trip through the format: return number and classification within the
// format's bit widths, extra bytes of the declared length, and a scanner
// channel only where one exists.
func (p Point) Matches(format Format) bool {
	if p.ReturnNumber > format.MaxReturnNumber() ||
		p.NumberOfReturns > format.MaxReturnNumber() {
		return false
	}
	if p.Classification > format.MaxClassification() {
		return false
	}
	if !format.IsExtended && p.ScannerChannel != 0 {
		return false
	}
	return len(p.ExtraBytes) == int(format.ExtraBytes)
}
