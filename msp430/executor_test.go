package msp430_test

import (
	"testing"

	"github.com/grahame-white/msp430emu/msp430"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCPUFixture(t *testing.T) *msp430.CPU {
	t.Helper()
	mem := msp430.NewMemoryController()
	return msp430.NewCPU(mem)
}

func loadWords(t *testing.T, cpu *msp430.CPU, address uint16, words ...uint16) {
	t.Helper()
	for i, w := range words {
		require.NoError(t, cpu.Memory.WriteWord(address+uint16(2*i), w))
	}
}

// MOV #0x1234, R1 at 0x4000.
func TestExecutor_MovImmediateToRegister(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	loadWords(t, cpu, 0x4000, 0x4031, 0x1234)

	cycles, err := cpu.Step()
	require.NoError(t, err)

	assert.Equal(t, uint16(0x1234), cpu.Registers.Get(1))
	assert.Equal(t, uint16(0x4004), cpu.Registers.PC())
	assert.Equal(t, 2, cycles)
}

// ADD R5, R4 with R4=0x7FFF, R5=0x0001 produces a signed overflow.
func TestExecutor_AddProducesOverflow(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.Set(4, 0x7FFF)
	cpu.Registers.Set(5, 0x0001)
	loadWords(t, cpu, 0x4000, 0x5504)

	cycles, err := cpu.Step()
	require.NoError(t, err)

	sr := cpu.Registers.SR()
	assert.Equal(t, uint16(0x8000), cpu.Registers.Get(4))
	assert.True(t, sr.N)
	assert.False(t, sr.Z)
	assert.False(t, sr.C)
	assert.True(t, sr.V)
	assert.Equal(t, uint16(0x4002), cpu.Registers.PC())
	assert.Equal(t, 1, cycles)
}

// PUSH R6 then POP R7 (emulated as MOV @SP+, R7) round-trips through memory.
func TestExecutor_PushThenPopRoundTrips(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.SetSP(0x2100)
	cpu.Registers.Set(6, 0xBEEF)
	loadWords(t, cpu, 0x4000, 0x1206, 0x4137)

	_, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x20FE), cpu.Registers.SP())
	lo, err := cpu.Memory.ReadByte(0x20FE)
	require.NoError(t, err)
	hi, err := cpu.Memory.ReadByte(0x20FF)
	require.NoError(t, err)
	assert.Equal(t, byte(0xEF), lo)
	assert.Equal(t, byte(0xBE), hi)

	_, err = cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), cpu.Registers.Get(7))
	assert.Equal(t, uint16(0x2100), cpu.Registers.SP())
}

// JMP +4 words from 0x4010.
func TestExecutor_JumpForward(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4010)
	loadWords(t, cpu, 0x4010, 0x3C04)

	cycles, err := cpu.Step()
	require.NoError(t, err)

	assert.Equal(t, uint16(0x401A), cpu.Registers.PC())
	assert.Equal(t, 2, cycles)
}

// RETI pops SR then PC off the stack.
func TestExecutor_Reti(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.SetSP(0x2100)
	require.NoError(t, cpu.Memory.WriteByte(0x2100, 0x04))
	require.NoError(t, cpu.Memory.WriteByte(0x2101, 0x00))
	require.NoError(t, cpu.Memory.WriteByte(0x2102, 0x20))
	require.NoError(t, cpu.Memory.WriteByte(0x2103, 0x40))
	loadWords(t, cpu, 0x4000, 0x1300)

	cycles, err := cpu.Step()
	require.NoError(t, err)

	assert.Equal(t, uint16(0x0004), cpu.Registers.SR().Get())
	assert.True(t, cpu.Registers.SR().N)
	assert.Equal(t, uint16(0x4020), cpu.Registers.PC())
	assert.Equal(t, uint16(0x2104), cpu.Registers.SP())
	assert.Equal(t, 5, cycles)
}

func TestExecutor_WriteProtectedSegmentA(t *testing.T) {
	cpu := newCPUFixture(t)

	err := cpu.Memory.WriteByte(0x1980, 0x42)
	require.Error(t, err)
	var protErr *msp430.FlashProtectionError
	require.ErrorAs(t, err, &protErr)

	v, err := cpu.Memory.ReadByte(0x1980)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), v)

	cpu.Memory.Information().SetSegmentWriteProtection(msp430.InfoSegmentA, false)
	require.NoError(t, cpu.Memory.WriteByte(0x1980, 0x42))

	v, err = cpu.Memory.ReadByte(0x1980)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v)
}

func TestExecutor_ConstantGeneratorNeverTouchesMemoryOrExtensionWords(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	// ADD #4, R5 using SR(R2) As=10 constant generator (+4): 0x5225
	loadWords(t, cpu, 0x4000, 0x5225)

	_, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(4), cpu.Registers.Get(5))
	assert.Equal(t, uint16(0x4002), cpu.Registers.PC(), "constant generator source must not consume an extension word")
}

func TestExecutor_ByteMovPreservesDestinationHighByte(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.Set(5, 0xBEEF)
	cpu.Registers.Set(4, 0x00AB)
	// MOV.B R4, R5: opcode MOV=0x4, byteOp bit set, src=R4, dst=R5, both register mode
	word := uint16(0x4000) | uint16(4)<<8 | 0x0040 | 5
	loadWords(t, cpu, 0x4000, word)

	_, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEAB), cpu.Registers.Get(5))
}

func TestExecutor_Cmp_DoesNotWriteBack(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.Set(4, 5)
	cpu.Registers.Set(5, 5)
	// CMP R5, R4
	loadWords(t, cpu, 0x4000, 0x9504)

	_, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(5), cpu.Registers.Get(4), "CMP must not write back to the destination")
	assert.True(t, cpu.Registers.SR().Z)
}

func TestExecutor_Swpb_SwapsBytes(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.Set(5, 0x1234)
	loadWords(t, cpu, 0x4000, 0x1085) // SWPB R5

	_, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x3412), cpu.Registers.Get(5))
}

// DADD R5, R4 with R4=0x0001, R5=0x9999 overflows the top BCD digit; the
// word-width accumulator must surface that carry-out rather than losing it.
func TestExecutor_DaddWordOverflowSetsCarry(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.Set(5, 0x9999)
	cpu.Registers.Set(4, 0x0001)
	loadWords(t, cpu, 0x4000, 0xA504) // DADD R5, R4

	_, err := cpu.Step()
	require.NoError(t, err)

	assert.Equal(t, uint16(0x0000), cpu.Registers.Get(4))
	assert.True(t, cpu.Registers.SR().C)
}

func TestExecutor_PushOutOfBoundsIsStackFault(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.SetSP(0xFFE2) // interrupt vector table: read/execute only
	cpu.Registers.Set(6, 0xBEEF)
	loadWords(t, cpu, 0x4000, 0x1206) // PUSH R6

	_, err := cpu.Step()
	require.Error(t, err)
	var faultErr *msp430.StackFaultError
	assert.ErrorAs(t, err, &faultErr)
}

func TestExecutor_CallOutOfBoundsIsStackFault(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	cpu.Registers.SetSP(0xFFE2) // interrupt vector table: read/execute only
	cpu.Registers.Set(6, 0x4100)
	loadWords(t, cpu, 0x4000, 0x1286) // CALL R6

	_, err := cpu.Step()
	require.Error(t, err)
	var faultErr *msp430.StackFaultError
	assert.ErrorAs(t, err, &faultErr)
}

func TestExecutor_JumpWithinRangeSucceeds(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0x4000)
	loadWords(t, cpu, 0x4000, 0x3C00) // JMP +0

	_, err := cpu.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4002), cpu.Registers.PC())
}

// A JMP decoded at the top of the address space wraps nextPC to 0x0000;
// combined with the minimum representable offset (-512 words) the target
// computation goes negative, which must raise JumpRangeError rather than
// silently wrapping the program counter.
func TestExecutor_JumpTargetBelowZeroFails(t *testing.T) {
	cpu := newCPUFixture(t)
	cpu.Registers.SetPC(0xFFFE)
	// SetVector bypasses the vector table's R/X-only permission mask, since
	// this is board-setup (loading a jump word into the vector table), not
	// a CPU-visible write.
	require.NoError(t, cpu.Memory.SetVector(0xFFFE, 0x00)) // JMP -512, low byte
	require.NoError(t, cpu.Memory.SetVector(0xFFFF, 0x3E)) // high byte

	_, err := cpu.Step()
	require.Error(t, err)
	var rangeErr *msp430.JumpRangeError
	assert.ErrorAs(t, err, &rangeErr)
}
