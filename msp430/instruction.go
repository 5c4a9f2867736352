package msp430

// Opcode identifies a decoded operation independent of its format.
type Opcode int

const (
	OpInvalid Opcode = iota

	// Format I (two-operand)
	OpMOV
	OpADD
	OpADDC
	OpSUBC
	OpSUB
	OpCMP
	OpDADD
	OpBIT
	OpBIC
	OpBIS
	OpXOR
	OpAND

	// Format II (single-operand)
	OpRRC
	OpSWPB
	OpRRA
	OpSXT
	OpPUSH
	OpCALL
	OpRETI

	// Format III (jump)
	OpJNE
	OpJEQ
	OpJNC
	OpJC
	OpJN
	OpJGE
	OpJL
	OpJMP
)

// Format identifies the instruction word layout.
type Format int

const (
	FormatI Format = iota
	FormatII
	FormatIII
)

// Instruction is a fully decoded instruction word, plus whatever extension
// words its operands require. Word is the raw instruction word as fetched;
// ExtensionWords holds 0, 1, or 2 words in fetch order (source extension
// first, then destination extension, mirroring operand order in the
// encoding).
type Instruction struct {
	Format         Format
	Opcode         Opcode
	ByteOp         bool
	Word           uint16
	ExtensionWords []uint16

	// Format I / II operand fields.
	SrcReg  int
	SrcMode AddressingMode
	DstReg  int
	DstMode AddressingMode

	// Format III operand field: signed word offset (already sign-extended
	// from the 10-bit encoded field), measured in words.
	JumpOffset int16
}

// Size reports the instruction's total encoded length in bytes, including
// extension words.
func (ins Instruction) Size() uint16 {
	return uint16(2 + 2*len(ins.ExtensionWords))
}
