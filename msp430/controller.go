package msp430

// Per-access cycle costs charged by the controller. FRAM's direct-write
// cycle cost is distinct from the legacy Flash program timing in fram.go's
// explicit Unlock/ProgramByte API.
const (
	cyclesSRAM            = 1
	cyclesFRAMRead        = 1
	cyclesFRAMWrite       = 2
	cyclesInfoRead        = 1
	cyclesInfoWrite       = 30
	cyclesPeripheral      = 1
	cyclesBootstrapLoader = 1
)

// MemoryController is the single facade over all backing stores and the
// peripheral bus. It routes by region, tracks statistics, and
// emits access/violation events.
type MemoryController struct {
	Map       *MemoryMap
	Validator *MemoryAccessValidator
	Peripheral PeripheralBus
	Observer  Observer
	Logger    Logger
	Stats     Statistics

	sram    *RandomAccessMemory
	bsl     *FramMemory
	fram    *FramMemory
	info    *InformationMemory
	vectors *FramMemory
}

// ControllerOption configures NewMemoryController.
type ControllerOption func(*MemoryController)

// WithPeripheralBus overrides the default no-op peripheral bus.
func WithPeripheralBus(bus PeripheralBus) ControllerOption {
	return func(c *MemoryController) { c.Peripheral = bus }
}

// WithObserver overrides the default no-op event observer.
func WithObserver(obs Observer) ControllerOption {
	return func(c *MemoryController) { c.Observer = obs }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) ControllerOption {
	return func(c *MemoryController) { c.Logger = l }
}

// WithMemoryMap overrides the default MSP430FR2355 region set. The caller is
// responsible for ensuring region ranges line up with the backing stores'
// expectations (SRAM/FRAM/Bootstrap Loader/Information regions).
func WithMemoryMap(m *MemoryMap) ControllerOption {
	return func(c *MemoryController) { c.Map = m }
}

// NewMemoryController constructs a controller over the default MSP430FR2355
// region set and stores, applying any options.
func NewMemoryController(opts ...ControllerOption) *MemoryController {
	c := &MemoryController{
		Map:        NewDefaultMemoryMap(),
		Peripheral: NopPeripheralBus{},
		Observer:   NopObserver{},
		Logger:     NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Validator = NewMemoryAccessValidator(c.Map, c.Logger)
	c.sram = NewRandomAccessMemory(sramStart, sramEnd-sramStart+1)
	c.bsl = NewFramMemory(bslStart, bslEnd-bslStart+1)
	c.fram = NewFramMemory(framStart, framEnd-framStart+1)
	c.info = NewInformationMemory(infoStart)
	c.vectors = NewFramMemory(vectorsStart, vectorsEnd-vectorsStart+1)
	return c
}

// SetVector writes a raw byte into the interrupt vector table, bypassing
// the region's Read/Execute-only permission mask. This is a board-setup
// operation (loading reset/interrupt vectors), not a CPU-visible write.
func (c *MemoryController) SetVector(address uint16, value byte) error {
	return c.vectors.WriteByte(address, value)
}

// FRAM exposes the code/data FRAM store, for callers that need the legacy
// Flash-controller API (Unlock/ProgramByte/EraseSector/...).
func (c *MemoryController) FRAM() *FramMemory { return c.fram }

// BootstrapLoader exposes the bootstrap-loader FRAM store.
func (c *MemoryController) BootstrapLoader() *FramMemory { return c.bsl }

// Information exposes the Information-memory store.
func (c *MemoryController) Information() *InformationMemory { return c.info }

// SRAM exposes the SRAM store.
func (c *MemoryController) SRAM() *RandomAccessMemory { return c.sram }

func (c *MemoryController) emitAccess(ctx AccessContext, reg *Region, cycles int, value uint16) {
	c.Stats.recordAccess(ctx.Kind, cycles)
	c.Observer.OnAccess(AccessEvent{Context: ctx, Region: *reg, Cycles: cycles, Value: value})
}

func (c *MemoryController) emitViolation(ctx AccessContext, err error) {
	c.Stats.recordViolation()
	c.Observer.OnViolation(ViolationEvent{Context: ctx, Message: err.Error(), Err: err})
}

func (c *MemoryController) checkWordAlign(address uint16) error {
	if address&1 != 0 {
		return &MemoryAlignmentError{Address: address}
	}
	return nil
}

// ReadByte reads a single byte, validating access and dispatching to the
// owning store or the peripheral bus.
func (c *MemoryController) ReadByte(address uint16) (byte, error) {
	ctx := AccessContext{Address: address, Kind: AccessRead, Width: WidthByte}
	reg, err := c.Validator.Validate(address, AccessRead)
	if err != nil {
		c.emitViolation(ctx, err)
		return 0, err
	}

	value, cycles, err := c.dispatchReadByte(*reg, address)
	if err != nil {
		c.emitViolation(ctx, err)
		return 0, err
	}
	c.emitAccess(ctx, reg, cycles, uint16(value))
	return value, nil
}

// ReadWord reads a little-endian 16-bit word.
func (c *MemoryController) ReadWord(address uint16) (uint16, error) {
	ctx := AccessContext{Address: address, Kind: AccessRead, Width: WidthWord}
	if err := c.checkWordAlign(address); err != nil {
		c.emitViolation(ctx, err)
		return 0, err
	}
	reg, err := c.Validator.Validate(address, AccessRead)
	if err != nil {
		c.emitViolation(ctx, err)
		return 0, err
	}

	value, cycles, err := c.dispatchReadWord(*reg, address)
	if err != nil {
		c.emitViolation(ctx, err)
		return 0, err
	}
	c.emitAccess(ctx, reg, cycles, value)
	return value, nil
}

// WriteByte writes a single byte.
func (c *MemoryController) WriteByte(address uint16, value byte) error {
	ctx := AccessContext{Address: address, Kind: AccessWrite, Width: WidthByte}
	reg, err := c.Validator.Validate(address, AccessWrite)
	if err != nil {
		c.emitViolation(ctx, err)
		return err
	}

	cycles, err := c.dispatchWriteByte(*reg, address, value)
	if err != nil {
		c.emitViolation(ctx, err)
		return err
	}
	c.emitAccess(ctx, reg, cycles, uint16(value))
	return nil
}

// WriteWord writes a little-endian 16-bit word.
func (c *MemoryController) WriteWord(address uint16, value uint16) error {
	ctx := AccessContext{Address: address, Kind: AccessWrite, Width: WidthWord}
	if err := c.checkWordAlign(address); err != nil {
		c.emitViolation(ctx, err)
		return err
	}
	reg, err := c.Validator.Validate(address, AccessWrite)
	if err != nil {
		c.emitViolation(ctx, err)
		return err
	}

	cycles, err := c.dispatchWriteWord(*reg, address, value)
	if err != nil {
		c.emitViolation(ctx, err)
		return err
	}
	c.emitAccess(ctx, reg, cycles, value)
	return nil
}

// FetchWord reads an instruction word at address, as ReadWord but tagged
// AccessExecute for statistics and validated against Execute permission.
func (c *MemoryController) FetchWord(address uint16) (uint16, error) {
	ctx := AccessContext{Address: address, Kind: AccessExecute, Width: WidthWord}
	if err := c.checkWordAlign(address); err != nil {
		c.emitViolation(ctx, err)
		return 0, err
	}
	reg, err := c.Validator.Validate(address, AccessExecute)
	if err != nil {
		c.emitViolation(ctx, err)
		return 0, err
	}

	value, cycles, err := c.dispatchReadWord(*reg, address)
	if err != nil {
		c.emitViolation(ctx, err)
		return 0, err
	}
	c.emitAccess(ctx, reg, cycles, value)
	return value, nil
}

func (c *MemoryController) dispatchReadByte(reg Region, address uint16) (byte, int, error) {
	switch reg.Name {
	case RegionSRAM:
		v, err := c.sram.ReadByte(address)
		return v, cyclesSRAM, err
	case RegionFRAM:
		v, err := c.fram.ReadByte(address)
		return v, cyclesFRAMRead, err
	case RegionBootstrapLoader:
		v, err := c.bsl.ReadByte(address)
		return v, cyclesBootstrapLoader, err
	case RegionInformation:
		v, err := c.info.ReadByte(address)
		return v, cyclesInfoRead, err
	case RegionSFR, RegionPeripheral8, RegionPeripheral16:
		return c.Peripheral.ReadByte(address), cyclesPeripheral, nil
	case RegionInterruptVectors:
		v, err := c.vectors.ReadByte(address)
		return v, cyclesFRAMRead, err
	default:
		return 0, 0, &MemoryAccessError{Address: address, Requested: AccessRead, Mapped: false}
	}
}

func (c *MemoryController) dispatchReadWord(reg Region, address uint16) (uint16, int, error) {
	switch reg.Name {
	case RegionSRAM:
		v, err := c.sram.ReadWord(address)
		return v, cyclesSRAM, err
	case RegionFRAM:
		v, err := c.fram.ReadWord(address)
		return v, cyclesFRAMRead, err
	case RegionBootstrapLoader:
		v, err := c.bsl.ReadWord(address)
		return v, cyclesBootstrapLoader, err
	case RegionInformation:
		v, err := c.info.ReadWord(address)
		return v, cyclesInfoRead, err
	case RegionSFR, RegionPeripheral8, RegionPeripheral16:
		return c.Peripheral.ReadWord(address), cyclesPeripheral, nil
	case RegionInterruptVectors:
		v, err := c.vectors.ReadWord(address)
		return v, cyclesFRAMRead, err
	default:
		return 0, 0, &MemoryAccessError{Address: address, Requested: AccessRead, Mapped: false}
	}
}

func (c *MemoryController) dispatchWriteByte(reg Region, address uint16, value byte) (int, error) {
	switch reg.Name {
	case RegionSRAM:
		return cyclesSRAM, c.sram.WriteByte(address, value)
	case RegionFRAM:
		return cyclesFRAMWrite, c.fram.WriteByte(address, value)
	case RegionInformation:
		ok, err := c.info.WriteByte(address, value)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, &FlashProtectionError{Address: address, Operation: FlashOpProgramByte, Reason: "segment is write-protected"}
		}
		return cyclesInfoWrite, nil
	case RegionSFR, RegionPeripheral8, RegionPeripheral16:
		c.Peripheral.WriteByte(address, value)
		return cyclesPeripheral, nil
	case RegionBootstrapLoader, RegionInterruptVectors:
		return 0, &MemoryAccessError{Address: address, Requested: AccessWrite, Permissions: reg.Permissions, Mapped: true}
	default:
		return 0, &MemoryAccessError{Address: address, Requested: AccessWrite, Mapped: false}
	}
}

func (c *MemoryController) dispatchWriteWord(reg Region, address uint16, value uint16) (int, error) {
	switch reg.Name {
	case RegionSRAM:
		return cyclesSRAM, c.sram.WriteWord(address, value)
	case RegionFRAM:
		return cyclesFRAMWrite, c.fram.WriteWord(address, value)
	case RegionInformation:
		ok, err := c.info.WriteWord(address, value)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, &FlashProtectionError{Address: address, Operation: FlashOpProgramWord, Reason: "segment is write-protected"}
		}
		return cyclesInfoWrite, nil
	case RegionSFR, RegionPeripheral8, RegionPeripheral16:
		c.Peripheral.WriteWord(address, value)
		return cyclesPeripheral, nil
	case RegionBootstrapLoader, RegionInterruptVectors:
		return 0, &MemoryAccessError{Address: address, Requested: AccessWrite, Permissions: reg.Permissions, Mapped: true}
	default:
		return 0, &MemoryAccessError{Address: address, Requested: AccessWrite, Mapped: false}
	}
}

// Reset clears SRAM, re-initializes FRAM and Information memory to their
// erased states, resets the interrupt vector table, and zeroes statistics.
func (c *MemoryController) Reset() {
	c.sram.Reset()
	c.bsl.Reset()
	c.fram.Reset()
	c.info.Reset()
	c.vectors.Reset()
	c.Stats.Reset()
}
