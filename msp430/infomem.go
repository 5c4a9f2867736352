package msp430

// InfoSegment identifies one of the four 128-byte Information-memory
// segments.
type InfoSegment int

const (
	InfoSegmentA InfoSegment = iota // 0x1980-0x19FF, calibration data
	InfoSegmentB                    // 0x1900-0x197F
	InfoSegmentC                    // 0x1880-0x18FF
	InfoSegmentD                    // 0x1800-0x187F
)

const infoSegmentSize = 128

// infoSegmentBase returns the start address of a segment.
func infoSegmentBase(seg InfoSegment) uint16 {
	switch seg {
	case InfoSegmentA:
		return 0x1980
	case InfoSegmentB:
		return 0x1900
	case InfoSegmentC:
		return 0x1880
	default:
		return 0x1800
	}
}

// InformationMemory backs the Information-memory region: four 128-byte
// segments, each with independent write protection. Segment A is
// write-protected by default, since it conventionally holds calibration
// data.
type InformationMemory struct {
	base      uint16
	data      []byte
	protected [4]bool
}

// NewInformationMemory allocates the 512-byte Information-memory store,
// erased to 0xFF, with Segment A protected by default.
func NewInformationMemory(base uint16) *InformationMemory {
	m := &InformationMemory{base: base, data: make([]byte, infoSegmentSize*4)}
	for i := range m.data {
		m.data[i] = 0xFF
	}
	m.protected[InfoSegmentA] = true
	return m
}

func (m *InformationMemory) offset(address uint16) (int, error) {
	off := int(address) - int(m.base)
	if off < 0 || off >= len(m.data) {
		return 0, &OutOfBoundsError{Address: address, Store: "information"}
	}
	return off, nil
}

func (m *InformationMemory) segmentOf(address uint16) InfoSegment {
	for _, seg := range []InfoSegment{InfoSegmentA, InfoSegmentB, InfoSegmentC, InfoSegmentD} {
		base := infoSegmentBase(seg)
		if address >= base && address < base+infoSegmentSize {
			return seg
		}
	}
	return InfoSegmentD
}

// IsProtected reports whether a segment is currently write-protected.
func (m *InformationMemory) IsProtected(seg InfoSegment) bool {
	return m.protected[seg]
}

// SetSegmentWriteProtection sets or clears a segment's write-protection flag.
func (m *InformationMemory) SetSegmentWriteProtection(seg InfoSegment, protected bool) {
	m.protected[seg] = protected
}

// ReadByte reads a single byte. Reads succeed on any in-range address
// regardless of protection.
func (m *InformationMemory) ReadByte(address uint16) (byte, error) {
	off, err := m.offset(address)
	if err != nil {
		return 0, err
	}
	return m.data[off], nil
}

// ReadWord reads a little-endian 16-bit word.
func (m *InformationMemory) ReadWord(address uint16) (uint16, error) {
	off, err := m.offset(address)
	if err != nil {
		return 0, err
	}
	if off+1 >= len(m.data) {
		return 0, &OutOfBoundsError{Address: address, Store: "information"}
	}
	return uint16(m.data[off]) | uint16(m.data[off+1])<<8, nil
}

// WriteByte writes a single byte. A write to a protected segment is
// blocked and reports failure via the returned bool, without raising
// an error; an out-of-bounds address still raises.
func (m *InformationMemory) WriteByte(address uint16, value byte) (bool, error) {
	off, err := m.offset(address)
	if err != nil {
		return false, err
	}
	if m.protected[m.segmentOf(address)] {
		return false, nil
	}
	m.data[off] = value
	return true, nil
}

// WriteWord writes a little-endian 16-bit word. A word write spanning two
// segments is blocked if either is protected.
func (m *InformationMemory) WriteWord(address uint16, value uint16) (bool, error) {
	off, err := m.offset(address)
	if err != nil {
		return false, err
	}
	if off+1 >= len(m.data) {
		return false, &OutOfBoundsError{Address: address, Store: "information"}
	}
	if m.protected[m.segmentOf(address)] || m.protected[m.segmentOf(address+1)] {
		return false, nil
	}
	m.data[off] = byte(value)
	m.data[off+1] = byte(value >> 8)
	return true, nil
}

// EraseSegment restores 0xFF across a segment's 128 bytes iff the segment
// is not protected.
func (m *InformationMemory) EraseSegment(seg InfoSegment) bool {
	if m.protected[seg] {
		return false
	}
	base := int(infoSegmentBase(seg)) - int(m.base)
	for i := base; i < base+infoSegmentSize; i++ {
		m.data[i] = 0xFF
	}
	return true
}

// StoreCalibrationData writes a bounded byte sequence into Segment A iff
// unprotected and the sequence length does not exceed the segment size.
func (m *InformationMemory) StoreCalibrationData(data []byte) bool {
	if m.protected[InfoSegmentA] || len(data) > infoSegmentSize {
		return false
	}
	base := int(infoSegmentBase(InfoSegmentA)) - int(m.base)
	copy(m.data[base:base+infoSegmentSize], data)
	return true
}

// Reset re-initializes Information memory to 0xFF except in protected
// segments.
func (m *InformationMemory) Reset() {
	for _, seg := range []InfoSegment{InfoSegmentA, InfoSegmentB, InfoSegmentC, InfoSegmentD} {
		if m.protected[seg] {
			continue
		}
		base := int(infoSegmentBase(seg)) - int(m.base)
		for i := base; i < base+infoSegmentSize; i++ {
			m.data[i] = 0xFF
		}
	}
}
