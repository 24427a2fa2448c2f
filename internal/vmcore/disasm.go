package vmcore

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/acca/internal/isa"
)

// Disassemble renders a single decoded word back to source-like text, for
// the -print-instructions flag and the debugger's disassembly pane. It is
// diagnostic output only, not fed back into the assembler.
func Disassemble(word uint32) string {
	entry, fields, ok := isa.Decode(word)
	if !ok {
		return fmt.Sprintf(".write w %#010x  ; undecodable", word)
	}

	var sb strings.Builder
	sb.WriteString(entry.Mnemonic)
	if entry.SizeLetter != 0 {
		sb.WriteString(".")
		sb.WriteString(isa.Size(fields[entry.SizeLetter]).String())
	}
	if entry.CondLetter != 0 {
		opt := isa.DecodeCondNull(fields[entry.CondLetter])
		if opt.Valid {
			sb.WriteString(".")
			sb.WriteString(opt.Cond.String())
		}
	}

	parts := make([]string, 0, len(entry.Operands))
	for _, op := range entry.Operands {
		parts = append(parts, disasmOperand(op, fields, entry))
	}
	if len(parts) > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(parts, ", "))
	}
	return sb.String()
}

func disasmOperand(op isa.Operand, f isa.Fields, e *isa.Entry) string {
	switch op.Kind {
	case isa.OperandReg:
		return isa.DecodeReg(f[op.Letter]).String()
	case isa.OperandRegNull:
		r := isa.DecodeRegNull(f[op.Letter])
		if r.None() {
			return "null"
		}
		return r.ID.String()
	case isa.OperandImm:
		return fmt.Sprintf("%#x", f[op.Letter])
	case isa.OperandImmShift:
		imm := f[op.Letter] & 0x7FF
		shift := f[op.Letter2] & 0x7
		return fmt.Sprintf("%#x", imm<<(11*shift))
	case isa.OperandRel:
		rel := isa.SignExtendN(f[op.Letter], e.FieldWidth(op.Letter))
		return fmt.Sprintf("%+d", rel)
	case isa.OperandBool:
		return fmt.Sprintf("%t", f[op.Letter] != 0)
	case isa.OperandCond8:
		return isa.DecodeCond8(f[op.Letter]).String()
	case isa.OperandMachineReg:
		return fmt.Sprintf("mreg(%#x)", f[op.Letter])
	default:
		return "?"
	}
}
