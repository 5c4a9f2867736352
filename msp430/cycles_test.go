package msp430_test

import (
	"testing"

	"github.com/grahame-white/msp430emu/msp430"
	"github.com/stretchr/testify/assert"
)

func TestCycleLookup_FormatIII_AlwaysTwoCycles(t *testing.T) {
	lookup := msp430.CycleLookup{}
	ins := msp430.Instruction{Format: msp430.FormatIII, Opcode: msp430.OpJMP}
	assert.Equal(t, 2, lookup.Cost(ins))
}

func TestCycleLookup_FormatII_RetiIsFixedFiveCycles(t *testing.T) {
	lookup := msp430.CycleLookup{}
	ins := msp430.Instruction{Format: msp430.FormatII, Opcode: msp430.OpRETI}
	assert.Equal(t, 5, lookup.Cost(ins))
}

func TestCycleLookup_FormatII_BySourceMode(t *testing.T) {
	lookup := msp430.CycleLookup{}

	reg := msp430.Instruction{Format: msp430.FormatII, Opcode: msp430.OpPUSH, SrcMode: msp430.AddressingMode{Kind: msp430.ModeRegister}}
	assert.Equal(t, 1, lookup.Cost(reg))

	ind := msp430.Instruction{Format: msp430.FormatII, Opcode: msp430.OpPUSH, SrcMode: msp430.AddressingMode{Kind: msp430.ModeIndirect}}
	assert.Equal(t, 3, lookup.Cost(ind))

	idx := msp430.Instruction{Format: msp430.FormatII, Opcode: msp430.OpPUSH, SrcMode: msp430.AddressingMode{Kind: msp430.ModeIndexed}}
	assert.Equal(t, 4, lookup.Cost(idx))
}

func TestCycleLookup_FormatI_RegisterToRegisterIsOneCycle(t *testing.T) {
	lookup := msp430.CycleLookup{}
	ins := msp430.Instruction{
		Format:  msp430.FormatI,
		Opcode:  msp430.OpADD,
		SrcMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
		DstMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
	}
	assert.Equal(t, 1, lookup.Cost(ins))
}

func TestCycleLookup_FormatI_ImmediateToRegisterIsTwoCycles(t *testing.T) {
	lookup := msp430.CycleLookup{}
	ins := msp430.Instruction{
		Format:         msp430.FormatI,
		Opcode:         msp430.OpMOV,
		SrcMode:        msp430.AddressingMode{Kind: msp430.ModeImmediate},
		DstMode:        msp430.AddressingMode{Kind: msp430.ModeRegister},
		ExtensionWords: []uint16{0x1234},
	}
	assert.Equal(t, 2, lookup.Cost(ins))
}

func TestCycleLookup_FormatI_MovSkipsDestinationReadForMemoryDestination(t *testing.T) {
	lookup := msp430.CycleLookup{}
	mov := msp430.Instruction{
		Format:  msp430.FormatI,
		Opcode:  msp430.OpMOV,
		SrcMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
		DstMode: msp430.AddressingMode{Kind: msp430.ModeIndexed},
	}
	add := msp430.Instruction{
		Format:  msp430.FormatI,
		Opcode:  msp430.OpADD,
		SrcMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
		DstMode: msp430.AddressingMode{Kind: msp430.ModeIndexed},
	}
	assert.Equal(t, lookup.Cost(add)-1, lookup.Cost(mov), "MOV/BIT/CMP cost one fewer cycle than other ops for the same operand classes")
}

func TestCycleLookup_FormatI_DestinationPCAddsPenalty(t *testing.T) {
	lookup := msp430.CycleLookup{}
	toReg := msp430.Instruction{
		Format:  msp430.FormatI,
		Opcode:  msp430.OpADD,
		SrcMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
		DstMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
		DstReg:  4,
	}
	toPC := toReg
	toPC.DstReg = msp430.PCRegister
	assert.Equal(t, lookup.Cost(toReg)+1, lookup.Cost(toPC))
}

func TestCycleLookup_ConstantGeneratorCountsAsRegisterMode(t *testing.T) {
	lookup := msp430.CycleLookup{}
	cg := msp430.Instruction{
		Format:  msp430.FormatI,
		Opcode:  msp430.OpADD,
		SrcMode: msp430.AddressingMode{Kind: msp430.ModeConstantGenerator, Const: 1},
		DstMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
	}
	plain := msp430.Instruction{
		Format:  msp430.FormatI,
		Opcode:  msp430.OpADD,
		SrcMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
		DstMode: msp430.AddressingMode{Kind: msp430.ModeRegister},
	}
	assert.Equal(t, lookup.Cost(plain), lookup.Cost(cg))
}
