package vmcore

import (
	"fmt"

	"github.com/lookbusy1344/acca/internal/isa"
)

// Step fetches, decodes, and executes exactly one instruction, per spec
// §4.D. The instruction pointer is advanced to the next sequential word
// before the instruction body runs, so every control-flow instruction
// (jmpr/callr's rel22, jmpa/calla's absolute target) computes against the
// already-advanced IP — matching the assembler's own pc+4 convention.
func (vm *VM) Step() error {
	if vm.State != StateRunning {
		return fmt.Errorf("vmcore: Step called while VM is %s", vm.State)
	}
	if vm.Cycles >= vm.MaxCycles {
		vm.State = StateFatal
		return fmt.Errorf("vmcore: cycle limit exceeded (%d)", vm.MaxCycles)
	}

	faultAddr := vm.CPU.IP
	word, ok := vm.Memory.ReadWord(faultAddr)
	if !ok {
		return vm.raise(Exception{ID: ExcInstructionLoadError, Elr: faultAddr})
	}
	vm.CPU.IP += 4

	entry, fields, ok := isa.Decode(word)
	if !ok {
		return vm.raise(Exception{ID: ExcInvalidInstruction, Elr: faultAddr})
	}

	vm.Cycles++
	return vm.execute(entry, fields, faultAddr)
}

// Run steps until the VM halts, faults, or hits a breakpoint.
func (vm *VM) Run() error {
	for vm.State == StateRunning {
		if vm.Breakpoints[vm.CPU.IP] {
			vm.State = StateBreakpoint
			return nil
		}
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}

func fieldSize(entry *isa.Entry, fields isa.Fields) isa.Size {
	if entry.SizeLetter == 0 {
		return isa.Word
	}
	return isa.Size(fields[entry.SizeLetter])
}

func condHolds(entry *isa.Entry, fields isa.Fields, flags isa.CPUFlags) bool {
	if entry.CondLetter == 0 {
		return true
	}
	opt := isa.DecodeCondNull(fields[entry.CondLetter])
	if !opt.Valid {
		return true // AnyCondition: unconditional
	}
	return opt.Cond.Eval(flags.Carry(), flags.Zero(), flags.Overflow(), flags.Sign())
}

// shiftCarryLeft reports the last bit shifted out of a left shift by amount
// (amount > 0; an amount above bits is clamped to bits): source bit
// bits-amount, which leaves the top of the window on the final step.
func shiftCarryLeft(src uint64, amount, bits int) bool {
	if amount > bits {
		amount = bits
	}
	return src&(uint64(1)<<uint(bits-amount)) != 0
}

// shiftCarryRight reports the last bit shifted out of a right shift
// (logical or arithmetic) by amount (amount > 0; an amount above bits is
// clamped to bits): the highest-indexed bit that has left the window.
func shiftCarryRight(src uint64, amount, bits int) bool {
	if amount > bits {
		amount = bits
	}
	return src&(uint64(1)<<uint(amount-1)) != 0
}

// execute dispatches a decoded instruction. faultAddr is the instruction's
// own address: every raised exception except `exc`'s User records faultAddr
// as elr, since `exc` alone is specified to advance IP past itself first.
func (vm *VM) execute(entry *isa.Entry, f isa.Fields, faultAddr isa.VMAddress) error {
	size := fieldSize(entry, f)
	regs := &vm.CPU.Regs

	switch entry.Op {
	case isa.OpLdi:
		dst := isa.DecodeRegNull(f['d'])
		imm := f['i'] & 0x7FF
		shift := f['h'] & 0x7
		value := imm << (11 * shift)
		regs.Write(dst, size, value)

	case isa.OpAddReg, isa.OpAddImm:
		dst := isa.DecodeRegNull(f['d'])
		a := regs.Read(isa.DecodeReg(f['a']), size)
		var b uint64
		if entry.Op == isa.OpAddReg {
			b = regs.Read(isa.DecodeReg(f['b']), size)
		} else {
			b = f['i'] & size.Mask()
		}
		cin := f['k'] != 0 && vm.CPU.Flags.Carry()
		result := (a + b + boolUint(cin)) & size.Mask()
		if f['g'] != 0 {
			carry := addCarry(a, b, cin, size)
			overflow := addOverflow(a, b, cin, size)
			zero, sign := nzFromResult(result, size)
			vm.CPU.Flags = vm.CPU.Flags.WithBits(carry, zero, overflow, sign)
		}
		regs.Write(dst, size, result)

	case isa.OpSubReg, isa.OpSubImm:
		dst := isa.DecodeRegNull(f['d'])
		a := regs.Read(isa.DecodeReg(f['a']), size)
		var b uint64
		if entry.Op == isa.OpSubReg {
			b = regs.Read(isa.DecodeReg(f['b']), size)
		} else {
			b = f['i'] & size.Mask()
		}
		bin := f['k'] != 0 && !vm.CPU.Flags.Carry()
		result := (a - b - boolUint(bin)) & size.Mask()
		if f['g'] != 0 {
			borrow := subBorrow(a, b, bin, size)
			overflow := subOverflow(a, b, bin, size)
			zero, sign := nzFromResult(result, size)
			vm.CPU.Flags = vm.CPU.Flags.WithBits(!borrow, zero, overflow, sign)
		}
		regs.Write(dst, size, result)

	case isa.OpAndReg, isa.OpOrReg, isa.OpXorReg, isa.OpNotReg:
		dst := isa.DecodeRegNull(f['d'])
		a := regs.Read(isa.DecodeReg(f['a']), size)
		var result uint64
		switch entry.Op {
		case isa.OpAndReg:
			result = a & regs.Read(isa.DecodeReg(f['b']), size)
		case isa.OpOrReg:
			result = a | regs.Read(isa.DecodeReg(f['b']), size)
		case isa.OpXorReg:
			result = a ^ regs.Read(isa.DecodeReg(f['b']), size)
		case isa.OpNotReg:
			result = ^a & size.Mask()
		}
		if f['g'] != 0 {
			zero, sign := nzFromResult(result, size)
			vm.CPU.Flags = vm.CPU.Flags.WithBits(vm.CPU.Flags.Carry(), zero, vm.CPU.Flags.Overflow(), sign)
		}
		regs.Write(dst, size, result)

	case isa.OpMul:
		dst := isa.DecodeRegNull(f['d'])
		srcSize := isa.Size(f['t'])
		signed := f['k'] != 0
		var product uint64
		if signed {
			product = uint64(regs.ReadSigned(isa.DecodeReg(f['a']), srcSize) * regs.ReadSigned(isa.DecodeReg(f['b']), srcSize))
		} else {
			product = regs.Read(isa.DecodeReg(f['a']), srcSize) * regs.Read(isa.DecodeReg(f['b']), srcSize)
		}
		result := product & size.Mask()
		if f['g'] != 0 {
			zero, sign := nzFromResult(result, size)
			vm.CPU.Flags = vm.CPU.Flags.WithBits(vm.CPU.Flags.Carry(), zero, vm.CPU.Flags.Overflow(), sign)
		}
		regs.Write(dst, size, result)

	case isa.OpDiv:
		quot := isa.DecodeRegNull(f['d'])
		rem := isa.DecodeRegNull(f['r'])
		signed := f['k'] != 0
		b := regs.Read(isa.DecodeReg(f['b']), size)
		if b == 0 {
			return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
		}
		var q, r uint64
		if signed {
			ai := regs.ReadSigned(isa.DecodeReg(f['a']), size)
			bi := regs.ReadSigned(isa.DecodeReg(f['b']), size)
			q, r = uint64(ai/bi), uint64(ai%bi)
		} else {
			a := regs.Read(isa.DecodeReg(f['a']), size)
			q, r = a/b, a%b
		}
		if f['g'] != 0 {
			zero, sign := nzFromResult(q, size)
			vm.CPU.Flags = vm.CPU.Flags.WithBits(false, zero, false, sign)
		}
		regs.Write(quot, size, q)
		regs.Write(rem, size, r)

	case isa.OpShl, isa.OpShr, isa.OpSar, isa.OpRot:
		dst := isa.DecodeRegNull(f['d'])
		src := regs.Read(isa.DecodeReg(f['a']), size)
		amount := int(f['i']) % 64
		bits := size.BitSize()
		var result uint64
		switch entry.Op {
		case isa.OpShl:
			if amount >= bits {
				result = 0
			} else {
				result = (src << uint(amount)) & size.Mask()
			}
			if amount != 0 {
				carry := shiftCarryLeft(src, amount, bits)
				zero, sign := nzFromResult(result, size)
				vm.CPU.Flags = vm.CPU.Flags.WithBits(carry, zero, vm.CPU.Flags.Overflow(), sign)
			}
		case isa.OpShr:
			if amount >= bits {
				result = 0
			} else {
				result = src >> uint(amount)
			}
			if amount != 0 {
				carry := shiftCarryRight(src, amount, bits)
				zero, sign := nzFromResult(result, size)
				vm.CPU.Flags = vm.CPU.Flags.WithBits(carry, zero, vm.CPU.Flags.Overflow(), sign)
			}
		case isa.OpSar:
			signed := isa.SignExtend(src, size)
			if amount >= 63 {
				if signed < 0 {
					result = size.Mask()
				} else {
					result = 0
				}
			} else {
				result = uint64(signed>>uint(amount)) & size.Mask()
			}
			if amount != 0 {
				carry := shiftCarryRight(src, amount, bits)
				zero, sign := nzFromResult(result, size)
				vm.CPU.Flags = vm.CPU.Flags.WithBits(carry, zero, vm.CPU.Flags.Overflow(), sign)
			}
		case isa.OpRot:
			a := amount % bits
			if a == 0 {
				result = src
			} else {
				result = ((src >> uint(a)) | (src << uint(bits-a))) & size.Mask()
			}
		}
		regs.Write(dst, size, result)

	case isa.OpLds:
		dst := isa.DecodeRegNull(f['d'])
		addr := isa.VMAddress(regs.Read(isa.DecodeReg(f['a']), isa.Word) + uint64(isa.SignExtendN(f['i'], 12)))
		value, ok := vm.Memory.ReadSized(addr, size)
		if !ok {
			return vm.raise(Exception{ID: ExcDataLoadError, Elr: faultAddr, Addr: addr, Write: false, Size: size})
		}
		regs.Write(dst, size, value)

	case isa.OpSts:
		src := regs.ReadOptional(isa.DecodeRegNull(f['b']), size)
		addr := isa.VMAddress(regs.Read(isa.DecodeReg(f['a']), isa.Word) + uint64(isa.SignExtendN(f['i'], 12)))
		if !vm.Memory.WriteSized(addr, src, size) {
			return vm.raise(Exception{ID: ExcDataLoadError, Elr: faultAddr, Addr: addr, Write: true, Size: size})
		}

	case isa.OpLdp:
		base := isa.VMAddress(regs.Read(isa.DecodeReg(f['a']), isa.Word) + uint64(isa.SignExtendN(f['i'], 7)))
		v1, ok1 := vm.Memory.ReadSized(base, size)
		v2, ok2 := vm.Memory.ReadSized(base+isa.VMAddress(size.ByteSize()), size)
		if !ok1 || !ok2 {
			return vm.raise(Exception{ID: ExcDataLoadError, Elr: faultAddr, Addr: base, Write: false, Size: size})
		}
		regs.Write(isa.DecodeRegNull(f['d']), size, v1)
		regs.Write(isa.DecodeRegNull(f['e']), size, v2)

	case isa.OpStp:
		base := isa.VMAddress(regs.Read(isa.DecodeReg(f['a']), isa.Word) + uint64(isa.SignExtendN(f['i'], 7)))
		v1 := regs.ReadOptional(isa.DecodeRegNull(f['b']), size)
		v2 := regs.ReadOptional(isa.DecodeRegNull(f['e']), size)
		if !vm.Memory.WriteSized(base, v1, size) || !vm.Memory.WriteSized(base+isa.VMAddress(size.ByteSize()), v2, size) {
			return vm.raise(Exception{ID: ExcDataLoadError, Elr: faultAddr, Addr: base, Write: true, Size: size})
		}

	case isa.OpPushs:
		src := regs.ReadOptional(isa.DecodeRegNull(f['b']), size)
		sp := regs.Read(isa.SP, isa.Word) - uint64(size.ByteSize())
		if !vm.Memory.WriteSized(isa.VMAddress(sp), src, size) {
			return vm.raise(Exception{ID: ExcDataLoadError, Elr: faultAddr, Addr: isa.VMAddress(sp), Write: true, Size: size})
		}
		regs.Write(isa.SomeRegister(isa.SP), isa.Word, sp)

	case isa.OpPops:
		sp := regs.Read(isa.SP, isa.Word)
		v, ok := vm.Memory.ReadSized(isa.VMAddress(sp), size)
		if !ok {
			return vm.raise(Exception{ID: ExcDataLoadError, Elr: faultAddr, Addr: isa.VMAddress(sp), Write: false, Size: size})
		}
		regs.Write(isa.DecodeRegNull(f['d']), size, v)
		regs.Write(isa.SomeRegister(isa.SP), isa.Word, sp+uint64(size.ByteSize()))

	case isa.OpPushp:
		sp := regs.Read(isa.SP, isa.Word) - 2*uint64(size.ByteSize())
		v1 := regs.ReadOptional(isa.DecodeRegNull(f['b']), size)
		v2 := regs.ReadOptional(isa.DecodeRegNull(f['e']), size)
		if !vm.Memory.WriteSized(isa.VMAddress(sp), v1, size) || !vm.Memory.WriteSized(isa.VMAddress(sp)+isa.VMAddress(size.ByteSize()), v2, size) {
			return vm.raise(Exception{ID: ExcDataLoadError, Elr: faultAddr, Addr: isa.VMAddress(sp), Write: true, Size: size})
		}
		regs.Write(isa.SomeRegister(isa.SP), isa.Word, sp)

	case isa.OpPopp:
		sp := regs.Read(isa.SP, isa.Word)
		v1, ok1 := vm.Memory.ReadSized(isa.VMAddress(sp), size)
		v2, ok2 := vm.Memory.ReadSized(isa.VMAddress(sp)+isa.VMAddress(size.ByteSize()), size)
		if !ok1 || !ok2 {
			return vm.raise(Exception{ID: ExcDataLoadError, Elr: faultAddr, Addr: isa.VMAddress(sp), Write: false, Size: size})
		}
		regs.Write(isa.DecodeRegNull(f['d']), size, v1)
		regs.Write(isa.DecodeRegNull(f['e']), size, v2)
		regs.Write(isa.SomeRegister(isa.SP), isa.Word, sp+2*uint64(size.ByteSize()))

	case isa.OpJmpa, isa.OpCalla:
		if condHolds(entry, f, vm.CPU.Flags) {
			target := isa.VMAddress(regs.Read(isa.DecodeReg(f['a']), isa.Word))
			if !target.AlignedTo4() {
				return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
			}
			if entry.Op == isa.OpCalla {
				regs.Write(isa.SomeRegister(isa.LR), isa.Word, uint64(vm.CPU.IP))
			}
			vm.CPU.IP = target
		}

	case isa.OpRet:
		target := isa.VMAddress(regs.Read(isa.LR, isa.Word))
		if !target.AlignedTo4() {
			return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
		}
		vm.CPU.IP = target

	case isa.OpEret:
		if vm.CPU.Flags.Privilege() != isa.PL0 {
			return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
		}
		if !vm.Elr.AlignedTo4() {
			return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
		}
		vm.eret()

	case isa.OpCjmpa, isa.OpCjmpr:
		a := regs.Read(isa.DecodeReg(f['a']), size)
		b := regs.Read(isa.DecodeReg(f['b']), size)
		diff := (a - b) & size.Mask()
		carry := !subBorrow(a, b, false, size)
		overflow := subOverflow(a, b, false, size)
		zero, sign := nzFromResult(diff, size)
		cond := isa.DecodeCond8(f['j'])
		if cond.Eval(carry, zero, overflow, sign) {
			var target isa.VMAddress
			if entry.Op == isa.OpCjmpa {
				target = isa.VMAddress(regs.Read(isa.DecodeReg(f['c']), isa.Word))
			} else {
				rel := isa.SignExtendN(f['r'], entry.FieldWidth('r'))
				target = isa.VMAddress(int64(vm.CPU.IP) + rel*4)
			}
			if !target.AlignedTo4() {
				return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
			}
			vm.CPU.IP = target
		}

	case isa.OpNop:
		// no-op

	case isa.OpUdf:
		return vm.raise(Exception{ID: ExcInvalidInstruction, Elr: faultAddr})

	case isa.OpDbg:
		return vm.raise(Exception{ID: ExcDebug, Elr: faultAddr})

	case isa.OpExc:
		// exc advances IP past itself (already done by Step's pre-increment)
		// before raising, so elr is the post-increment vm.CPU.IP, not faultAddr.
		return vm.raise(Exception{ID: ExcUser, Elr: vm.CPU.IP, UserValue: f['i']})

	case isa.OpLdm:
		mreg := isa.MachineRegister(f['m'])
		if !readAllowed(mreg, vm.CPU.Flags.Privilege()) {
			return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
		}
		value, ok := vm.readMachineRegister(mreg)
		if !ok {
			return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
		}
		regs.Write(isa.DecodeRegNull(f['d']), isa.Word, value)

	case isa.OpStm:
		mreg := isa.MachineRegister(f['m'])
		if !writeAllowed(mreg, vm.CPU.Flags.Privilege()) {
			return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
		}
		value := regs.ReadOptional(isa.DecodeRegNull(f['d']), isa.Word)
		if !vm.writeMachineRegister(mreg, value) {
			return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
		}

	case isa.OpJmpr, isa.OpCallr:
		if condHolds(entry, f, vm.CPU.Flags) {
			rel := isa.SignExtendN(f['r'], entry.FieldWidth('r'))
			target := isa.VMAddress(int64(vm.CPU.IP) + rel*4)
			if !target.AlignedTo4() {
				return vm.raise(Exception{ID: ExcInvalidOperation, Elr: faultAddr})
			}
			if entry.Op == isa.OpCallr {
				regs.Write(isa.SomeRegister(isa.LR), isa.Word, uint64(vm.CPU.IP))
			}
			vm.CPU.IP = target
		}

	default:
		return vm.raise(Exception{ID: ExcInvalidInstruction, Elr: faultAddr})
	}

	return nil
}

func boolUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
