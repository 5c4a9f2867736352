package msp430

// cycleClass buckets an AddressingModeKind into one of the four rows/columns
// SLAU445I Table 4-10 actually distinguishes: register-direct, indirect
// (plain or autoincrement), immediate, and memory-addressed (indexed,
// symbolic, or absolute all cost the same: each needs exactly one extension
// word and one extra memory cycle).
type cycleClass int

const (
	classRegister cycleClass = iota
	classIndirect
	classImmediate
	classMemory
)

func classify(mode AddressingMode) cycleClass {
	switch mode.CycleMode() {
	case ModeRegister:
		return classRegister
	case ModeIndirect, ModeIndirectAutoIncrement:
		return classIndirect
	case ModeImmediate:
		return classImmediate
	default: // ModeIndexed, ModeAbsolute, ModeSymbolic
		return classMemory
	}
}

// formatICycles holds the base cycle count for every (source, destination)
// class pair. A register destination that is PC adds destIsPCPenaltyCycles
// on top of the table value in formatICost.
var formatICycles = map[cycleClass]map[cycleClass]int{
	classRegister: {classRegister: 1, classMemory: 4, classIndirect: 4, classImmediate: 4},
	classIndirect: {classRegister: 2, classMemory: 5, classIndirect: 5, classImmediate: 5},
	classImmediate: {classRegister: 2, classMemory: 5, classIndirect: 5, classImmediate: 5},
	classMemory: {classRegister: 3, classMemory: 6, classIndirect: 6, classImmediate: 6},
}

const destIsPCPenaltyCycles = 1

// movLikeSkipsDestRead reports whether an opcode either never reads its
// destination operand (MOV) or never writes it back (BIT, CMP), letting it
// skip the extra memory cycle a memory-addressed destination otherwise costs.
func movLikeSkipsDestRead(op Opcode) bool {
	switch op {
	case OpMOV, OpBIT, OpCMP:
		return true
	default:
		return false
	}
}

// CycleLookup computes the cycle cost of a decoded instruction per
// SLAU445I Table 4-10, falling back to a generic additive formula for any
// combination the table does not cover.
type CycleLookup struct{}

// Cost returns the number of CPU cycles a decoded instruction takes to
// execute, not counting any legacy Flash wait-state cycles a write to FRAM
// may additionally incur.
func (CycleLookup) Cost(ins Instruction) int {
	switch ins.Format {
	case FormatIII:
		return 2
	case FormatII:
		return formatIICost(ins)
	default:
		return formatICost(ins)
	}
}

func formatIICost(ins Instruction) int {
	if ins.Opcode == OpRETI {
		return 5
	}
	switch classify(ins.SrcMode) {
	case classRegister:
		return 1
	case classIndirect:
		return 3
	default:
		return 4
	}
}

func formatICost(ins Instruction) int {
	srcClass := classify(ins.SrcMode)
	dstClass := classify(ins.DstMode)

	row, ok := formatICycles[srcClass]
	if !ok {
		return genericFormatICost(ins)
	}
	cost, ok := row[dstClass]
	if !ok {
		return genericFormatICost(ins)
	}

	if ins.DstReg == PCRegister && dstClass == classRegister {
		cost += destIsPCPenaltyCycles
	}
	if dstClass == classMemory && movLikeSkipsDestRead(ins.Opcode) {
		cost--
	}
	return cost
}

// genericFormatICost is the legacy additive fallback: one cycle
// for the fetch, one per extension word, and one more if the destination
// touches memory at all.
func genericFormatICost(ins Instruction) int {
	cost := 1 + len(ins.ExtensionWords)
	if classify(ins.DstMode) != classRegister {
		cost++
	}
	return cost
}
