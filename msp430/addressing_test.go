package msp430_test

import (
	"testing"

	"github.com/grahame-white/msp430emu/msp430"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressingModeDecoder_PCSourceSpecialCases(t *testing.T) {
	tests := []struct {
		name  string
		word  uint16
		ext   []uint16
		want  msp430.AddressingModeKind
	}{
		{"register", 0x4005, nil, msp430.ModeRegister},
		{"symbolic", 0x4015, []uint16{0x0010}, msp430.ModeSymbolic},
		{"indirect", 0x4025, nil, msp430.ModeIndirect},
		{"immediate", 0x4035, []uint16{0x1234}, msp430.ModeImmediate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecoderFixture(t, 0x4000, append([]uint16{tt.word}, tt.ext...)...)
			ins, err := d.Decode(0x4000)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ins.SrcMode.Kind)
			assert.Equal(t, msp430.PCRegister, ins.SrcReg)
		})
	}
}

func TestAddressingModeDecoder_R3ConstantGeneratorAllFourValues(t *testing.T) {
	tests := []struct {
		name string
		word uint16
		want int32
	}{
		{"as=00 -> 0", 0x4305, 0},
		{"as=01 -> +1", 0x4315, 1},
		{"as=10 -> +2", 0x4325, 2},
		{"as=11 -> -1", 0x4335, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecoderFixture(t, 0x4000, tt.word)
			ins, err := d.Decode(0x4000)
			require.NoError(t, err)
			assert.True(t, ins.SrcMode.IsConstantGenerator())
			assert.Equal(t, tt.want, ins.SrcMode.Const)
			assert.Empty(t, ins.ExtensionWords, "constant generator must never consume an extension word")
		})
	}
}

func TestAddressingModeDecoder_R2ConstantGeneratorValues(t *testing.T) {
	// SR(R2) As=10 -> +4, As=11 -> +8.
	plus4 := newDecoderFixture(t, 0x4000, 0x4225)
	ins, err := plus4.Decode(0x4000)
	require.NoError(t, err)
	assert.Equal(t, int32(4), ins.SrcMode.Const)

	plus8 := newDecoderFixture(t, 0x4000, 0x4235)
	ins, err = plus8.Decode(0x4000)
	require.NoError(t, err)
	assert.Equal(t, int32(8), ins.SrcMode.Const)
}

func TestAddressingModeDecoder_DestinationSpecialCases(t *testing.T) {
	d := newDecoderFixture(t, 0x4000, 0x4482, 0x0300) // dest R2 absolute
	ins, err := d.Decode(0x4000)
	require.NoError(t, err)
	assert.Equal(t, msp430.ModeAbsolute, ins.DstMode.Kind)

	d2 := newDecoderFixture(t, 0x4000, 0x4480, 0x0010) // dest R0 symbolic
	ins2, err := d2.Decode(0x4000)
	require.NoError(t, err)
	assert.Equal(t, msp430.ModeSymbolic, ins2.DstMode.Kind)
}

func TestAddressingMode_RequiresExtensionWord(t *testing.T) {
	yes := []msp430.AddressingModeKind{msp430.ModeIndexed, msp430.ModeImmediate, msp430.ModeAbsolute, msp430.ModeSymbolic}
	for _, k := range yes {
		assert.True(t, msp430.AddressingMode{Kind: k}.RequiresExtensionWord())
	}
	no := []msp430.AddressingModeKind{msp430.ModeRegister, msp430.ModeIndirect, msp430.ModeIndirectAutoIncrement, msp430.ModeConstantGenerator}
	for _, k := range no {
		assert.False(t, msp430.AddressingMode{Kind: k}.RequiresExtensionWord())
	}
}

func TestAddressingMode_CycleModeCollapsesConstantGeneratorToRegister(t *testing.T) {
	cg := msp430.AddressingMode{Kind: msp430.ModeConstantGenerator, Const: 4}
	assert.Equal(t, msp430.ModeRegister, cg.CycleMode())
}
