package asm

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/acca/internal/isa"
)

// parseRegister recognizes the register-operand syntax (r0-r15, sp, fp, lr).
func parseRegister(text string) (isa.RegisterID, bool) {
	switch text {
	case "sp":
		return isa.SP, true
	case "fp":
		return isa.FP, true
	case "lr":
		return isa.LR, true
	}
	if !strings.HasPrefix(text, "r") || len(text) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(text[1:])
	if err != nil || n < 0 || n > 15 {
		return 0, false
	}
	return isa.RegisterID(n), true
}

func looksLikeRegister(text string) bool {
	_, ok := parseRegister(text)
	return ok || text == "null"
}

// candidateFits reports whether entry's operand-kind shape is compatible
// with the statement's raw operand text, without evaluating expressions
// yet. This disambiguates overloaded mnemonics like add's register and
// immediate forms by inspecting whether each slot's text is register-shaped.
func candidateFits(e *isa.Entry, operands []string) bool {
	required := 0
	for _, op := range e.Operands {
		if op.Default == nil {
			required++
		}
	}
	if len(operands) < required || len(operands) > len(e.Operands) {
		return false
	}
	for i, opText := range operands {
		kind := e.Operands[i].Kind
		isRegKind := kind == isa.OperandReg || kind == isa.OperandRegNull
		if isRegKind != looksLikeRegister(opText) {
			return false
		}
	}
	return true
}

func selectEntry(mnemonic string, operands []string, pos Position) (*isa.Entry, error) {
	candidates := isa.EntriesForMnemonic(mnemonic)
	if len(candidates) == 0 {
		return nil, errAt(pos, "unknown mnemonic %q", mnemonic)
	}
	for _, c := range candidates {
		if candidateFits(c, operands) {
			return c, nil
		}
	}
	return nil, errAt(pos, "no form of %q accepts %d operand(s) of the given kind", mnemonic, len(operands))
}

// packImmShift decomposes value into acca's ldi packed immediate/shift
// field: value must equal imm11 << (shift*11) for some shift in [0,7].
func packImmShift(value uint64, pos Position) (imm, shift uint64, err error) {
	for shift = 0; shift < 8; shift++ {
		if value&^(uint64(0x7FF)<<(11*shift)) == 0 {
			return (value >> (11 * shift)) & 0x7FF, shift, nil
		}
	}
	return 0, 0, errAt(pos, "immediate %#x does not fit ldi's packed immediate field (split across multiple ldi instructions)", value)
}

func maskToWidth(v uint64, width int) uint64 {
	if width >= 64 {
		return v
	}
	return v & ((uint64(1) << uint(width)) - 1)
}

// EncodeInstruction binds a parsed instruction statement's operands against
// its schema entry and packs the resulting 32-bit word, per spec §4.B.
// ctx's CurrentAddress must be the instruction's own (already-aligned)
// address; relative operands compute against pc = address+4.
func EncodeInstruction(s *Stmt, ctx ExprContext) (uint32, error) {
	entry, err := selectEntry(s.Mnemonic, s.Operands, s.Pos)
	if err != nil {
		return 0, err
	}

	values := make(map[byte]uint64, len(entry.Operands)+2)

	if entry.SizeLetter != 0 {
		sz := isa.Word
		if s.HasSize {
			sz = s.Size
		}
		values[entry.SizeLetter] = uint64(sz)
	}
	if entry.CondLetter != 0 {
		values[entry.CondLetter] = isa.EncodeCondNull(s.Cond)
	}

	pc := ctx.CurrentAddress()

	for i, opDef := range entry.Operands {
		var opText string
		hasText := i < len(s.Operands)
		if hasText {
			opText = s.Operands[i]
		} else if opDef.Default == nil {
			return 0, errAt(s.Pos, "%s: missing required operand %q", s.Mnemonic, opDef.Name)
		}

		switch opDef.Kind {
		case isa.OperandReg:
			reg, ok := parseRegister(opText)
			if !ok {
				return 0, errAt(s.Pos, "%s: operand %q must be a register", s.Mnemonic, opDef.Name)
			}
			values[opDef.Letter] = uint64(reg)

		case isa.OperandRegNull:
			if !hasText {
				values[opDef.Letter] = isa.NullRegister
				continue
			}
			if opText == "null" {
				values[opDef.Letter] = isa.NullRegister
				continue
			}
			reg, ok := parseRegister(opText)
			if !ok {
				return 0, errAt(s.Pos, "%s: operand %q must be a register or null", s.Mnemonic, opDef.Name)
			}
			values[opDef.Letter] = uint64(reg)

		case isa.OperandBool:
			v, err := evalOperandOrDefault(opText, hasText, opDef, s.Pos, ctx)
			if err != nil {
				return 0, err
			}
			values[opDef.Letter] = v & 1

		case isa.OperandImm:
			v, err := evalOperandOrDefault(opText, hasText, opDef, s.Pos, ctx)
			if err != nil {
				return 0, err
			}
			values[opDef.Letter] = maskToWidth(v, entry.FieldWidth(opDef.Letter))

		case isa.OperandMachineReg:
			v, err := evalOperandOrDefault(opText, hasText, opDef, s.Pos, ctx)
			if err != nil {
				return 0, err
			}
			values[opDef.Letter] = maskToWidth(v, entry.FieldWidth(opDef.Letter))

		case isa.OperandCond8:
			c, ok := isa.ParseCondition(opText)
			if !ok {
				return 0, errAt(s.Pos, "%s: operand %q is not a condition", s.Mnemonic, opDef.Name)
			}
			v, ok := isa.EncodeCond8(c)
			if !ok {
				return 0, errAt(s.Pos, "%s: condition %q is not usable here (l/nl not representable)", s.Mnemonic, opText)
			}
			values[opDef.Letter] = v

		case isa.OperandRel:
			target, err := evalOperandOrDefault(opText, hasText, opDef, s.Pos, ctx)
			if err != nil {
				return 0, err
			}
			delta := int64(target) - int64(pc+4)
			if delta%4 != 0 {
				return 0, errAt(s.Pos, "%s: branch target %#x is not 4-byte aligned relative to %#x", s.Mnemonic, target, pc+4)
			}
			values[opDef.Letter] = maskToWidth(uint64(delta/4), entry.FieldWidth(opDef.Letter))

		case isa.OperandImmShift:
			v, err := evalOperandOrDefault(opText, hasText, opDef, s.Pos, ctx)
			if err != nil {
				return 0, err
			}
			imm, shift, err := packImmShift(v, s.Pos)
			if err != nil {
				return 0, err
			}
			values[opDef.Letter] = imm
			values[opDef.Letter2] = shift
		}
	}

	return entry.Encode(values), nil
}

func evalOperandOrDefault(text string, hasText bool, op isa.Operand, pos Position, ctx ExprContext) (uint64, error) {
	if !hasText {
		return uint64(*op.Default), nil
	}
	return ParseEvalExpr(text, pos, ctx)
}
