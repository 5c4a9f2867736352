package msp430

// Register identity. R0 is the program counter, R1 the stack pointer, R2 the
// status register (and a constant-generator participant), R3 the second
// constant generator. R4-R15 are general purpose.
const (
	PCRegister   = 0
	SPRegister   = 1
	SRRegister   = 2
	CGRegister   = 3
	NumRegisters = 16
)

// RegisterFile is the ordered 16-tuple of 16-bit MSP430 registers. PC and SP
// are kept word-aligned: any write is masked with &0xFFFE at this single
// writeback site rather than at every call site.
type RegisterFile struct {
	r  [NumRegisters]uint16
	sr StatusRegister
}

// NewRegisterFile returns a zeroed register file with SR reset to 0.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{}
}

// Get returns the full 16-bit value of a register. Reading SR returns the
// packed status flags.
func (r *RegisterFile) Get(reg int) uint16 {
	if reg == SRRegister {
		return r.sr.Get()
	}
	return r.r[reg]
}

// Set writes the full 16-bit value of a register. Writes to PC or SP are
// masked to an even address. Writes to SR unpack the flag bits.
func (r *RegisterFile) Set(reg int, value uint16) {
	switch reg {
	case PCRegister, SPRegister:
		r.r[reg] = value &^ 1
	case SRRegister:
		r.sr.Set(value)
		r.r[reg] = r.sr.Get()
	default:
		r.r[reg] = value
	}
}

// GetByte returns the zero-extended low byte of a register.
func (r *RegisterFile) GetByte(reg int) uint16 {
	return r.Get(reg) & 0xFF
}

// SetByte writes the low byte of a register, preserving the high byte of the
// destination. PC/SP byte writes still enforce word alignment on the
// resulting 16-bit value.
func (r *RegisterFile) SetByte(reg int, value byte) {
	cur := r.Get(reg)
	next := (cur & 0xFF00) | uint16(value)
	r.Set(reg, next)
}

// SR returns the status register for direct flag inspection/mutation by the
// executor.
func (r *RegisterFile) SR() *StatusRegister {
	return &r.sr
}

// PC returns the program counter (always even).
func (r *RegisterFile) PC() uint16 {
	return r.r[PCRegister]
}

// SetPC sets the program counter, masked to an even address.
func (r *RegisterFile) SetPC(value uint16) {
	r.Set(PCRegister, value)
}

// SP returns the stack pointer (always even).
func (r *RegisterFile) SP() uint16 {
	return r.r[SPRegister]
}

// SetSP sets the stack pointer, masked to an even address.
func (r *RegisterFile) SetSP(value uint16) {
	r.Set(SPRegister, value)
}

// IncrementPC advances PC by the given number of bytes (already computed by
// the caller from instruction + extension-word lengths), preserving the
// alignment mask.
func (r *RegisterFile) IncrementPC(bytes uint16) {
	r.SetPC(r.PC() + bytes)
}

// Reset clears all registers including SR.
func (r *RegisterFile) Reset() {
	for i := range r.r {
		r.r[i] = 0
	}
	r.sr = StatusRegister{}
}
