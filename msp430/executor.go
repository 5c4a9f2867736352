package msp430

// operand is a resolved read/write location for a single instruction
// operand: either a register number or a memory address. Immediate and
// constant-generator operands are read-only; writing to one is silently
// discarded, since no real encoding relies on it.
type operand struct {
	isRegister bool
	readOnly   bool
	reg        int
	address    uint16
}

// Executor runs the fetch/decode/execute/writeback loop against
// a register file and a memory controller.
type Executor struct {
	Registers *RegisterFile
	Memory    *MemoryController
	Decoder   *InstructionDecoder
	Cycles    CycleLookup
}

// NewExecutor builds an Executor over the given register file and memory
// controller, wiring a fresh InstructionDecoder to the same controller.
func NewExecutor(registers *RegisterFile, memory *MemoryController) *Executor {
	return &Executor{
		Registers: registers,
		Memory:    memory,
		Decoder:   NewInstructionDecoder(memory),
	}
}

// Step fetches, decodes, and executes one instruction at the current PC,
// returning the number of CPU cycles it cost.
func (ex *Executor) Step() (int, error) {
	pc := ex.Registers.PC()
	ins, err := ex.Decoder.Decode(pc)
	if err != nil {
		return 0, err
	}

	nextPC := pc + ins.Size()
	ex.Registers.SetPC(nextPC)

	switch ins.Format {
	case FormatI:
		err = ex.execFormatI(ins, nextPC)
	case FormatII:
		err = ex.execFormatII(ins, nextPC)
	default:
		err = ex.execFormatIII(ins, nextPC)
	}
	if err != nil {
		return 0, err
	}

	return ex.Cycles.Cost(ins), nil
}

func (ex *Executor) readMem(address uint16, byteOp bool) (uint16, error) {
	if byteOp {
		b, err := ex.Memory.ReadByte(address)
		return uint16(b), err
	}
	return ex.Memory.ReadWord(address)
}

func (ex *Executor) writeMem(address uint16, value uint16, byteOp bool) error {
	if byteOp {
		return ex.Memory.WriteByte(address, byte(value))
	}
	return ex.Memory.WriteWord(address, value)
}

// resolveOperand resolves an operand's location and current value,
// consuming an extension word from ins.ExtensionWords[*idx] if the mode
// needs one and performing any autoincrement side effect on the register
// file. It is used for both read-only source operands and read/write
// single-operand instructions.
func (ex *Executor) resolveOperand(ins Instruction, mode AddressingMode, reg int, idx *int, nextPC uint16) (operand, uint16, error) {
	byteOp := ins.ByteOp

	if mode.Kind == ModeConstantGenerator {
		value := mode.Const
		if byteOp {
			return operand{readOnly: true}, uint16(uint8(value)), nil
		}
		return operand{readOnly: true}, uint16(int16(value)), nil
	}

	switch mode.Kind {
	case ModeRegister:
		op := operand{isRegister: true, reg: reg}
		var v uint16
		if byteOp {
			v = uint16(ex.Registers.GetByte(reg))
		} else {
			v = ex.Registers.Get(reg)
		}
		return op, v, nil

	case ModeIndirect:
		addr := ex.Registers.Get(reg)
		v, err := ex.readMem(addr, byteOp)
		return operand{address: addr}, v, err

	case ModeIndirectAutoIncrement:
		addr := ex.Registers.Get(reg)
		v, err := ex.readMem(addr, byteOp)
		if err != nil {
			return operand{}, 0, err
		}
		inc := uint16(2)
		if byteOp && reg != PCRegister && reg != SPRegister {
			inc = 1
		}
		ex.Registers.Set(reg, addr+inc)
		return operand{address: addr}, v, nil

	case ModeImmediate:
		ext := ins.ExtensionWords[*idx]
		*idx++
		if byteOp {
			ext &= 0xFF
		}
		return operand{readOnly: true}, ext, nil

	case ModeAbsolute:
		ext := ins.ExtensionWords[*idx]
		*idx++
		v, err := ex.readMem(ext, byteOp)
		return operand{address: ext}, v, err

	case ModeIndexed:
		ext := ins.ExtensionWords[*idx]
		*idx++
		addr := ex.Registers.Get(reg) + ext
		v, err := ex.readMem(addr, byteOp)
		return operand{address: addr}, v, err

	default: // ModeSymbolic
		ext := ins.ExtensionWords[*idx]
		*idx++
		addr := nextPC + ext
		v, err := ex.readMem(addr, byteOp)
		return operand{address: addr}, v, err
	}
}

func (ex *Executor) writeOperand(op operand, value uint16, byteOp bool) error {
	if op.readOnly {
		return nil
	}
	if op.isRegister {
		if byteOp {
			ex.Registers.SetByte(op.reg, byte(value))
		} else {
			ex.Registers.Set(op.reg, value)
		}
		return nil
	}
	return ex.writeMem(op.address, value, byteOp)
}

func (ex *Executor) push(value uint16) error {
	sp := ex.Registers.SP() - 2
	ex.Registers.SetSP(sp)
	return ex.Memory.WriteWord(sp, value)
}

func (ex *Executor) pop() (uint16, error) {
	sp := ex.Registers.SP()
	value, err := ex.Memory.ReadWord(sp)
	if err != nil {
		return 0, err
	}
	ex.Registers.SetSP(sp + 2)
	return value, nil
}

func widthParams(byteOp bool) (mask uint32, signBit uint32) {
	if byteOp {
		return 0xFF, 0x80
	}
	return 0xFFFF, 0x8000
}

func (ex *Executor) execFormatI(ins Instruction, nextPC uint16) error {
	var srcIdx int
	srcOp, srcVal, err := ex.resolveOperand(ins, ins.SrcMode, ins.SrcReg, &srcIdx, nextPC)
	if err != nil {
		return err
	}
	_ = srcOp

	dstIdx := srcIdx
	needsDstRead := ins.Opcode != OpMOV
	var dstOp operand
	var dstVal uint16
	if needsDstRead {
		dstOp, dstVal, err = ex.resolveOperand(ins, ins.DstMode, ins.DstReg, &dstIdx, nextPC)
	} else {
		dstOp, err = ex.resolveDstLocation(ins.DstMode, ins.DstReg, ins, &dstIdx, nextPC)
	}
	if err != nil {
		return err
	}

	mask, signBit := widthParams(ins.ByteOp)
	sr := ex.Registers.SR()

	writeBack := true
	var result uint32

	switch ins.Opcode {
	case OpMOV:
		result = uint32(srcVal) & mask

	case OpADD:
		sum := uint32(srcVal) + uint32(dstVal)
		result = sum & mask
		sr.C = sum > mask
		sr.V = addOverflow(srcVal, dstVal, uint16(result), signBit)

	case OpADDC:
		carry := uint32(0)
		if sr.C {
			carry = 1
		}
		sum := uint32(srcVal) + uint32(dstVal) + carry
		result = sum & mask
		sr.C = sum > mask
		sr.V = addOverflow(srcVal, dstVal, uint16(result), signBit)

	case OpSUB, OpCMP:
		notSrc := (^uint32(srcVal)) & mask
		sum := uint32(dstVal) + notSrc + 1
		result = sum & mask
		sr.C = sum > mask
		sr.V = subOverflow(srcVal, dstVal, uint16(result), signBit)
		if ins.Opcode == OpCMP {
			writeBack = false
		}

	case OpSUBC:
		carry := uint32(0)
		if sr.C {
			carry = 1
		}
		notSrc := (^uint32(srcVal)) & mask
		sum := uint32(dstVal) + notSrc + carry
		result = sum & mask
		sr.C = sum > mask
		sr.V = subOverflow(srcVal, dstVal, uint16(result), signBit)

	case OpDADD:
		var sum uint16
		sum, sr.C = bcdAdd(srcVal, dstVal, sr.C, ins.ByteOp)
		result = uint32(sum)

	case OpBIT, OpAND:
		result = uint32(srcVal) & uint32(dstVal) & mask
		sr.C = result != 0
		sr.V = false
		if ins.Opcode == OpBIT {
			writeBack = false
		}

	case OpXOR:
		result = (uint32(srcVal) ^ uint32(dstVal)) & mask
		sr.C = result != 0
		sr.V = (uint32(srcVal)&signBit != 0) && (uint32(dstVal)&signBit != 0)

	case OpBIC:
		result = uint32(dstVal) &^ uint32(srcVal) & mask
		writeBack = true

	case OpBIS:
		result = (uint32(dstVal) | uint32(srcVal)) & mask

	default:
		return &InvalidInstructionError{Word: ins.Word, Reason: "unhandled format I opcode"}
	}

	switch ins.Opcode {
	case OpBIC, OpBIS:
		// no flag updates
	default:
		if ins.Opcode != OpBIT && ins.Opcode != OpAND {
			sr.UpdateNZ(uint16(result), ins.ByteOp)
		} else {
			sr.N = uint32(result)&signBit != 0
			sr.Z = result == 0
		}
	}

	if writeBack {
		if err := ex.writeOperand(dstOp, uint16(result), ins.ByteOp); err != nil {
			return err
		}
	}
	return nil
}

func addOverflow(src, dst, result uint16, signBit uint32) bool {
	s, d, r := uint32(src)&signBit, uint32(dst)&signBit, uint32(result)&signBit
	return s == d && r != s
}

func subOverflow(src, dst, result uint16, signBit uint32) bool {
	s, d, r := uint32(src)&signBit, uint32(dst)&signBit, uint32(result)&signBit
	return d != s && r != d
}

// bcdAdd adds two operands digit-by-digit as packed BCD, implementing
// DADD's semantics; carryIn seeds the lowest nibble. The final carry out of
// the top nibble is returned separately rather than folded into result,
// since a word-width result has no spare bit to hold it.
func bcdAdd(a, b uint16, carryIn bool, byteOp bool) (result uint16, carryOut bool) {
	nibbles := 4
	if byteOp {
		nibbles = 2
	}
	carry := uint16(0)
	if carryIn {
		carry = 1
	}
	for i := 0; i < nibbles; i++ {
		shift := uint(i * 4)
		da := (a >> shift) & 0xF
		db := (b >> shift) & 0xF
		sum := da + db + carry
		carry = 0
		if sum > 9 {
			sum += 6
		}
		if sum > 0xF {
			carry = 1
			sum &= 0xF
		}
		result |= sum << shift
	}
	return result, carry != 0
}

// resolveDstLocation resolves a destination operand's location without
// reading it (used by MOV, which only writes).
func (ex *Executor) resolveDstLocation(mode AddressingMode, reg int, ins Instruction, idx *int, nextPC uint16) (operand, error) {
	switch mode.Kind {
	case ModeRegister:
		return operand{isRegister: true, reg: reg}, nil
	case ModeAbsolute:
		ext := ins.ExtensionWords[*idx]
		*idx++
		return operand{address: ext}, nil
	case ModeIndexed:
		ext := ins.ExtensionWords[*idx]
		*idx++
		return operand{address: ex.Registers.Get(reg) + ext}, nil
	default: // ModeSymbolic
		ext := ins.ExtensionWords[*idx]
		*idx++
		return operand{address: nextPC + ext}, nil
	}
}

func (ex *Executor) execFormatII(ins Instruction, nextPC uint16) error {
	if ins.Opcode == OpRETI {
		sr := ex.Registers.SR()
		srWord, err := ex.pop()
		if err != nil {
			return &StackFaultError{Address: ex.Registers.SP(), Reason: "RETI could not pop status register"}
		}
		sr.Set(srWord)
		pc, err := ex.pop()
		if err != nil {
			return &StackFaultError{Address: ex.Registers.SP(), Reason: "RETI could not pop program counter"}
		}
		ex.Registers.SetPC(pc)
		return nil
	}

	var idx int
	op, value, err := ex.resolveOperand(ins, ins.SrcMode, ins.SrcReg, &idx, nextPC)
	if err != nil {
		return err
	}

	switch ins.Opcode {
	case OpPUSH:
		if err := ex.push(value); err != nil {
			return &StackFaultError{Address: ex.Registers.SP(), Reason: "PUSH could not write memory"}
		}
		return nil

	case OpCALL:
		if err := ex.push(nextPC); err != nil {
			return &StackFaultError{Address: ex.Registers.SP(), Reason: "CALL could not push return address"}
		}
		ex.Registers.SetPC(value)
		return nil

	case OpRRC, OpRRA:
		mask, signBit := widthParams(ins.ByteOp)
		sr := ex.Registers.SR()
		oldBit0 := value&1 != 0
		var result uint16
		if ins.Opcode == OpRRC {
			carryIn := uint16(0)
			if sr.C {
				carryIn = 1
			}
			result = (value >> 1) | (carryIn << uint(widthBits(ins.ByteOp)-1))
		} else {
			signMask := uint16(0)
			if uint32(value)&signBit != 0 {
				signMask = uint16(signBit)
			}
			result = (value >> 1) | signMask
		}
		result &= uint16(mask)
		sr.C = oldBit0
		sr.V = false
		sr.UpdateNZ(result, ins.ByteOp)
		return ex.writeOperand(op, result, ins.ByteOp)

	case OpSWPB:
		result := (value << 8) | (value >> 8)
		return ex.writeOperand(op, result, false)

	case OpSXT:
		sr := ex.Registers.SR()
		low := value & 0xFF
		var result uint16
		if low&0x80 != 0 {
			result = low | 0xFF00
		} else {
			result = low
		}
		sr.C = result != 0
		sr.V = false
		sr.UpdateNZ(result, false)
		return ex.writeOperand(op, result, false)

	default:
		return &InvalidInstructionError{Word: ins.Word, Reason: "unhandled format II opcode"}
	}
}

func widthBits(byteOp bool) int {
	if byteOp {
		return 8
	}
	return 16
}

func (ex *Executor) execFormatIII(ins Instruction, nextPC uint16) error {
	sr := ex.Registers.SR()
	var taken bool
	switch ins.Opcode {
	case OpJNE:
		taken = !sr.Z
	case OpJEQ:
		taken = sr.Z
	case OpJNC:
		taken = !sr.C
	case OpJC:
		taken = sr.C
	case OpJN:
		taken = sr.N
	case OpJGE:
		taken = sr.N == sr.V
	case OpJL:
		taken = sr.N != sr.V
	default: // OpJMP
		taken = true
	}
	if taken {
		target := int32(nextPC) + int32(ins.JumpOffset)*2
		if target < 0 || target > 0xFFFF {
			return &JumpRangeError{OffsetWords: int(ins.JumpOffset)}
		}
		ex.Registers.SetPC(uint16(target))
	}
	return nil
}

// EmulatedMnemonic identifies well-known emulated instruction forms (BR,
// RET, CLRC, ...) defined as aliases of an underlying Format I/II encoding,
// for diagnostic display only. Decoding and execution never distinguish
// them from their underlying form.
func EmulatedMnemonic(ins Instruction) (string, bool) {
	switch {
	case ins.Format == FormatI && ins.Opcode == OpMOV && ins.SrcMode.Kind == ModeIndirectAutoIncrement &&
		ins.SrcReg == SPRegister && ins.DstMode.Kind == ModeRegister && ins.DstReg == PCRegister:
		return "RET", true
	case ins.Format == FormatI && ins.Opcode == OpMOV && ins.DstMode.Kind == ModeRegister && ins.DstReg == PCRegister:
		return "BR", true
	case ins.Format == FormatI && ins.Opcode == OpBIC && ins.SrcMode.Kind == ModeConstantGenerator &&
		ins.SrcMode.Const == 1 && ins.DstMode.Kind == ModeRegister && ins.DstReg == SRRegister:
		return "CLRC", true
	case ins.Format == FormatI && ins.Opcode == OpBIS && ins.SrcMode.Kind == ModeConstantGenerator &&
		ins.SrcMode.Const == 1 && ins.DstMode.Kind == ModeRegister && ins.DstReg == SRRegister:
		return "SETC", true
	case ins.Format == FormatI && ins.Opcode == OpMOV && ins.SrcMode.Kind == ModeConstantGenerator &&
		ins.SrcMode.Const == 0 && ins.DstMode.Kind == ModeRegister:
		return "CLR", true
	default:
		return "", false
	}
}
