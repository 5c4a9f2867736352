package msp430

// AddressingModeKind enumerates the MSP430 addressing modes,
// including the special register-mode cases (R0/R2/R3) and a distinguished
// Invalid used to signal decoder failure.
type AddressingModeKind int

const (
	ModeInvalid AddressingModeKind = iota
	ModeRegister
	ModeIndexed
	ModeIndirect
	ModeIndirectAutoIncrement
	ModeImmediate
	ModeAbsolute
	ModeSymbolic
	ModeConstantGenerator
)

// AddressingMode is the resolved addressing mode for one operand, carrying
// whatever ancillary value the mode needs: the register is tracked
// alongside it by the caller, Indexed/Symbolic carry no payload here (the
// extension word supplies the offset at operand-read time), Immediate/
// Absolute are likewise resolved against the extension word, and
// ConstantGenerator carries the synthesized value directly.
type AddressingMode struct {
	Kind  AddressingModeKind
	Const int32 // valid iff Kind == ModeConstantGenerator
}

// RequiresExtensionWord reports whether this mode consumes an extension
// word: Indexed, Immediate, Absolute, or Symbolic.
func (m AddressingMode) RequiresExtensionWord() bool {
	switch m.Kind {
	case ModeIndexed, ModeImmediate, ModeAbsolute, ModeSymbolic:
		return true
	default:
		return false
	}
}

// IsConstantGenerator reports whether operand reads for this mode bypass
// memory and extension words entirely.
func (m AddressingMode) IsConstantGenerator() bool {
	return m.Kind == ModeConstantGenerator
}

// CycleMode returns the addressing mode to use for cycle-table lookups: a
// constant generator is counted as Register mode.
func (m AddressingMode) CycleMode() AddressingModeKind {
	if m.Kind == ModeConstantGenerator {
		return ModeRegister
	}
	return m.Kind
}

// decodeSourceMode resolves (register, As) to a source addressing mode,
// including the R0/R2/R3 special cases and constant generators.
func decodeSourceMode(reg int, as uint8) AddressingMode {
	switch reg {
	case PCRegister:
		switch as {
		case 0:
			return AddressingMode{Kind: ModeRegister}
		case 1:
			return AddressingMode{Kind: ModeSymbolic}
		case 2:
			return AddressingMode{Kind: ModeIndirect}
		default:
			return AddressingMode{Kind: ModeImmediate}
		}
	case SRRegister:
		switch as {
		case 0:
			return AddressingMode{Kind: ModeRegister}
		case 1:
			return AddressingMode{Kind: ModeAbsolute}
		case 2:
			return AddressingMode{Kind: ModeConstantGenerator, Const: 4}
		default:
			return AddressingMode{Kind: ModeConstantGenerator, Const: 8}
		}
	case CGRegister:
		switch as {
		case 0:
			return AddressingMode{Kind: ModeConstantGenerator, Const: 0}
		case 1:
			return AddressingMode{Kind: ModeConstantGenerator, Const: 1}
		case 2:
			return AddressingMode{Kind: ModeConstantGenerator, Const: 2}
		default:
			return AddressingMode{Kind: ModeConstantGenerator, Const: -1}
		}
	default:
		switch as {
		case 0:
			return AddressingMode{Kind: ModeRegister}
		case 1:
			return AddressingMode{Kind: ModeIndexed}
		case 2:
			return AddressingMode{Kind: ModeIndirect}
		default:
			return AddressingMode{Kind: ModeIndirectAutoIncrement}
		}
	}
}

// decodeDestMode resolves (register, Ad) to a destination addressing mode.
// Destinations never resolve to a constant generator or Immediate (not
// encodable with a single Ad bit).
func decodeDestMode(reg int, ad uint8) AddressingMode {
	switch reg {
	case PCRegister:
		if ad == 0 {
			return AddressingMode{Kind: ModeRegister}
		}
		return AddressingMode{Kind: ModeSymbolic}
	case SRRegister:
		if ad == 0 {
			return AddressingMode{Kind: ModeRegister}
		}
		return AddressingMode{Kind: ModeAbsolute}
	default:
		if ad == 0 {
			return AddressingMode{Kind: ModeRegister}
		}
		return AddressingMode{Kind: ModeIndexed}
	}
}
