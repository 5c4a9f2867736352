package msp430

// CPU bundles a register file and memory controller into one resettable,
// steppable unit, the top-level object an embedder constructs.
type CPU struct {
	Registers *RegisterFile
	Memory    *MemoryController
	Executor  *Executor
}

// NewCPU builds a CPU over a fresh register file and the given memory
// controller.
func NewCPU(memory *MemoryController) *CPU {
	registers := NewRegisterFile()
	return &CPU{
		Registers: registers,
		Memory:    memory,
		Executor:  NewExecutor(registers, memory),
	}
}

// Reset clears registers and all backing memory stores, then loads PC from
// the reset vector at 0xFFFE and word-aligns it, mirroring power-on reset
// behavior.
func (c *CPU) Reset() error {
	c.Registers.Reset()
	c.Memory.Reset()
	pc, err := c.Memory.ReadWord(0xFFFE)
	if err != nil {
		return err
	}
	c.Registers.SetPC(pc)
	return nil
}

// Step advances execution by exactly one instruction, returning its cycle
// cost.
func (c *CPU) Step() (int, error) {
	return c.Executor.Step()
}

// Boot loads PC from the reset vector at 0xFFFE/0xFFFF and word-aligns it,
// without disturbing any other register or memory state. This is the
// normal MSP430 reset behavior (SLAU445I): FRAM is non-volatile, so a CPU
// reset re-reads whatever vector an external loader already programmed
// rather than erasing it. Use Reset first only when a genuinely blank
// chip is wanted; Boot alone is the right call after loading a program.
func (c *CPU) Boot() error {
	pc, err := c.Memory.ReadWord(0xFFFE)
	if err != nil {
		return err
	}
	c.Registers.SetPC(pc)
	return nil
}

// DumpState renders a compact human-readable snapshot of registers and
// status flags, intended for test failure output and interactive
// inspection rather than machine parsing.
func (c *CPU) DumpState() string {
	r := c.Registers
	sr := r.SR()
	out := "PC=" + hex16(r.PC()) + " SP=" + hex16(r.SP()) + " SR=" + hex16(sr.Get()) + "\n"
	out += "flags: C=" + boolBit(sr.C) + " Z=" + boolBit(sr.Z) + " N=" + boolBit(sr.N) +
		" V=" + boolBit(sr.V) + " GIE=" + boolBit(sr.GIE) + " CPUOFF=" + boolBit(sr.CPUOFF) + "\n"
	for i := 4; i < NumRegisters; i++ {
		out += "R" + itoa(i) + "=" + hex16(r.Get(i)) + " "
	}
	return out
}

func boolBit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func hex16(v uint16) string {
	const digits = "0123456789ABCDEF"
	buf := [4]byte{}
	for i := 3; i >= 0; i-- {
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return "0x" + string(buf[:])
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
