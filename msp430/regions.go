package msp430

import "sort"

// Permission is a bitmask of the access kinds a region allows.
type Permission byte

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
)

// Includes reports whether the permission mask allows the requested access.
func (p Permission) Includes(k AccessKind) bool {
	return p&Permission(k) != 0
}

func (p Permission) String() string {
	s := ""
	if p&PermRead != 0 {
		s += "R"
	}
	if p&PermWrite != 0 {
		s += "W"
	}
	if p&PermExecute != 0 {
		s += "X"
	}
	if s == "" {
		return "-"
	}
	return s
}

// Region names the known MSP430FR2355 memory regions.
type RegionName string

const (
	RegionSFR              RegionName = "Special Function Registers"
	RegionPeripheral8      RegionName = "8-bit Peripherals"
	RegionPeripheral16     RegionName = "16-bit Peripherals"
	RegionBootstrapLoader  RegionName = "Bootstrap Loader"
	RegionInformation      RegionName = "Information Memory"
	RegionSRAM             RegionName = "SRAM"
	RegionFRAM             RegionName = "FRAM"
	RegionInterruptVectors RegionName = "Interrupt Vector Table"
)

// Region describes one non-overlapping span of the 16-bit address space.
type Region struct {
	Name        RegionName
	Start       uint16
	End         uint16 // inclusive
	Permissions Permission
	Description string
}

// Contains reports whether address lies within [Start, End].
func (r Region) Contains(address uint16) bool {
	return address >= r.Start && address <= r.End
}

// Size returns the number of addressable bytes in the region.
func (r Region) Size() int {
	return int(r.End) - int(r.Start) + 1
}

// MSP430FR2355 default region boundaries.
const (
	sfrStart, sfrEnd                 = 0x0000, 0x00FF
	periph8Start, periph8End         = 0x0100, 0x01FF
	periph16Start, periph16End       = 0x0200, 0x027F
	bslStart, bslEnd                 = 0x1000, 0x17FF
	infoStart, infoEnd               = 0x1800, 0x19FF
	sramStart, sramEnd               = 0x2000, 0x2FFF
	framStart, framEnd               = 0x4000, 0xBFFF
	vectorsStart, vectorsEnd         = 0xFFE0, 0xFFFF
)

// DefaultRegions returns the fixed eight-region MSP430FR2355 memory map.
func DefaultRegions() []Region {
	return []Region{
		{RegionSFR, sfrStart, sfrEnd, PermRead | PermWrite, "special function registers"},
		{RegionPeripheral8, periph8Start, periph8End, PermRead | PermWrite, "8-bit peripheral registers"},
		{RegionPeripheral16, periph16Start, periph16End, PermRead | PermWrite, "16-bit peripheral registers"},
		{RegionBootstrapLoader, bslStart, bslEnd, PermRead | PermExecute, "bootstrap loader (FRAM)"},
		{RegionInformation, infoStart, infoEnd, PermRead | PermWrite, "information memory (FRAM)"},
		{RegionSRAM, sramStart, sramEnd, PermRead | PermWrite | PermExecute, "volatile SRAM"},
		{RegionFRAM, framStart, framEnd, PermRead | PermWrite | PermExecute, "code/data FRAM"},
		{RegionInterruptVectors, vectorsStart, vectorsEnd, PermRead | PermExecute, "interrupt vector table"},
	}
}

// MemoryMap provides O(1) address-to-region lookup over a validated,
// non-overlapping region set.
type MemoryMap struct {
	regions []Region
	lookup  [65536]*Region // index is address, nil where unmapped
}

// NewMemoryMap validates the given region list (non-overlapping, total size
// within the 16-bit address space) and builds the lookup table. Construction
// rejects any overlapping region set as a fatal configuration error.
func NewMemoryMap(regions []Region) (*MemoryMap, error) {
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	totalSize := 0
	for i, reg := range sorted {
		if reg.End < reg.Start {
			return nil, &ConfigError{Reason: "region " + string(reg.Name) + " has End before Start"}
		}
		if i > 0 && reg.Start <= sorted[i-1].End {
			return nil, &ConfigError{Reason: "region " + string(reg.Name) + " overlaps " + string(sorted[i-1].Name)}
		}
		totalSize += reg.Size()
	}
	if totalSize > 65536 {
		return nil, &ConfigError{Reason: "region set exceeds 65536 total bytes"}
	}

	m := &MemoryMap{regions: sorted}
	for i := range m.regions {
		reg := &m.regions[i]
		for addr := int(reg.Start); addr <= int(reg.End); addr++ {
			m.lookup[addr] = reg
		}
	}
	return m, nil
}

// NewDefaultMemoryMap builds the MSP430FR2355 default memory map.
func NewDefaultMemoryMap() *MemoryMap {
	m, err := NewMemoryMap(DefaultRegions())
	if err != nil {
		// The built-in default table is a compile-time invariant: it must
		// never fail validation.
		panic(err)
	}
	return m
}

// Resolve returns the region containing address, or nil if unmapped.
func (m *MemoryMap) Resolve(address uint16) *Region {
	return m.lookup[address]
}

// Regions returns the configured region list, sorted by start address.
func (m *MemoryMap) Regions() []Region {
	out := make([]Region, len(m.regions))
	copy(out, m.regions)
	return out
}

// MemoryAccessValidator validates that a requested access is permitted: the
// address must be mapped and the region's permissions must include the
// requested access kind.
type MemoryAccessValidator struct {
	Map    *MemoryMap
	Logger Logger
}

// NewMemoryAccessValidator constructs a validator over the given map. A nil
// logger is replaced with a no-op logger.
func NewMemoryAccessValidator(m *MemoryMap, logger Logger) *MemoryAccessValidator {
	if logger == nil {
		logger = NopLogger{}
	}
	return &MemoryAccessValidator{Map: m, Logger: logger}
}

// Validate checks address+kind against the memory map, returning the
// resolved region on success or a *MemoryAccessError on failure.
func (v *MemoryAccessValidator) Validate(address uint16, kind AccessKind) (*Region, error) {
	reg := v.Map.Resolve(address)
	if reg == nil {
		return nil, &MemoryAccessError{Address: address, Requested: kind, Mapped: false}
	}
	if !reg.Permissions.Includes(kind) {
		return nil, &MemoryAccessError{Address: address, Requested: kind, Permissions: reg.Permissions, Mapped: true}
	}
	if v.Logger.Enabled(LevelDebug) {
		v.Logger.Debug("memory access validated", Field{Key: "address", Value: address}, Field{Key: "kind", Value: kind.String()})
	}
	return reg, nil
}
