package isa

// defaultInt returns a pointer to a literal default value, for optional
// schema operands (spec §4.B: "Optional operands have declared defaults").
func defaultInt(v int64) *int64 { return &v }

// Table is the declarative instruction schema: one Entry per opcode,
// in the order that decides longest-prefix ties (spec §4.A/§4.D). Each
// entry's Pattern is a 32-character required-bit mask/value template with
// named variable letters; Operands describes how the encoder binds parsed
// assembly operands to those letters, and how the decoder converts the
// raw extracted fields back into typed operands for the executor.
var Table = []Entry{
	{
		Mnemonic: "ldi", Op: OpLdi, Pattern: "00000001ssdddddiiiiiiiiiiihhh000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "imm", Letter: 'i', Letter2: 'h', Kind: OperandImmShift},
		},
	},
	{
		Mnemonic: "add", Op: OpAddReg, Pattern: "00000010ssdddddaaaaabbbbbkg00000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "carry", Letter: 'k', Kind: OperandBool, Default: defaultInt(0)},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "sub", Op: OpSubReg, Pattern: "00000011ssdddddaaaaabbbbbkg00000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "borrow", Letter: 'k', Kind: OperandBool, Default: defaultInt(0)},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "add", Op: OpAddImm, Pattern: "00000100ssdddddaaaaaiiiiiiiiiikg",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "imm", Letter: 'i', Kind: OperandImm},
			{Name: "carry", Letter: 'k', Kind: OperandBool, Default: defaultInt(0)},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "sub", Op: OpSubImm, Pattern: "00000101ssdddddaaaaaiiiiiiiiiikg",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "imm", Letter: 'i', Kind: OperandImm},
			{Name: "borrow", Letter: 'k', Kind: OperandBool, Default: defaultInt(0)},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "and", Op: OpAndReg, Pattern: "00000110ssdddddaaaaabbbbbg000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "or", Op: OpOrReg, Pattern: "00000111ssdddddaaaaabbbbbg000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "xor", Op: OpXorReg, Pattern: "00001000ssdddddaaaaabbbbbg000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "not", Op: OpNotReg, Pattern: "00001001ssdddddaaaaag00000000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src", Letter: 'a', Kind: OperandReg},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "mul", Op: OpMul, Pattern: "00001010ssdddddaaaaabbbbbkttg000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "signed", Letter: 'k', Kind: OperandBool, Default: defaultInt(1)},
			{Name: "src_size", Letter: 't', Kind: OperandImm, Default: defaultInt(int64(Word))},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "div", Op: OpDiv, Pattern: "00001011ssdddddrrrrraaaaabbbbbkg",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "quot", Letter: 'd', Kind: OperandRegNull},
			{Name: "rem", Letter: 'r', Kind: OperandRegNull},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "signed", Letter: 'k', Kind: OperandBool, Default: defaultInt(1)},
			{Name: "set_flags", Letter: 'g', Kind: OperandBool, Default: defaultInt(1)},
		},
	},
	{
		Mnemonic: "shl", Op: OpShl, Pattern: "00001100ssdddddaaaaaiiiiii000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src", Letter: 'a', Kind: OperandReg},
			{Name: "amount", Letter: 'i', Kind: OperandImm},
		},
	},
	{
		Mnemonic: "shr", Op: OpShr, Pattern: "00001101ssdddddaaaaaiiiiii000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src", Letter: 'a', Kind: OperandReg},
			{Name: "amount", Letter: 'i', Kind: OperandImm},
		},
	},
	{
		Mnemonic: "sar", Op: OpSar, Pattern: "00001110ssdddddaaaaaiiiiii000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src", Letter: 'a', Kind: OperandReg},
			{Name: "amount", Letter: 'i', Kind: OperandImm},
		},
	},
	{
		Mnemonic: "rot", Op: OpRot, Pattern: "00001111ssdddddaaaaaiiiiii000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "src", Letter: 'a', Kind: OperandReg},
			{Name: "amount", Letter: 'i', Kind: OperandImm},
		},
	},
	{
		Mnemonic: "lds", Op: OpLds, Pattern: "00010000ssdddddaaaaaiiiiiiiiiiii",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "addr", Letter: 'a', Kind: OperandReg},
			{Name: "offset", Letter: 'i', Kind: OperandImm, Default: defaultInt(0)},
		},
	},
	{
		Mnemonic: "sts", Op: OpSts, Pattern: "00010001ssaaaaabbbbbiiiiiiiiiiii",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "addr", Letter: 'a', Kind: OperandReg},
			{Name: "src", Letter: 'b', Kind: OperandRegNull},
			{Name: "offset", Letter: 'i', Kind: OperandImm, Default: defaultInt(0)},
		},
	},
	{
		Mnemonic: "ldp", Op: OpLdp, Pattern: "00010010ssdddddeeeeeaaaaaiiiiiii",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst1", Letter: 'd', Kind: OperandRegNull},
			{Name: "dst2", Letter: 'e', Kind: OperandRegNull},
			{Name: "addr", Letter: 'a', Kind: OperandReg},
			{Name: "offset", Letter: 'i', Kind: OperandImm, Default: defaultInt(0)},
		},
	},
	{
		Mnemonic: "stp", Op: OpStp, Pattern: "00010011ssaaaaabbbbbeeeeeiiiiiii",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "addr", Letter: 'a', Kind: OperandReg},
			{Name: "src1", Letter: 'b', Kind: OperandRegNull},
			{Name: "src2", Letter: 'e', Kind: OperandRegNull},
			{Name: "offset", Letter: 'i', Kind: OperandImm, Default: defaultInt(0)},
		},
	},
	{
		Mnemonic: "pushs", Op: OpPushs, Pattern: "00010100ssbbbbb00000000000000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "src", Letter: 'b', Kind: OperandRegNull},
		},
	},
	{
		Mnemonic: "pops", Op: OpPops, Pattern: "00010101ssddddd00000000000000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
		},
	},
	{
		Mnemonic: "pushp", Op: OpPushp, Pattern: "00010110ssbbbbbeeeee000000000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "src1", Letter: 'b', Kind: OperandRegNull},
			{Name: "src2", Letter: 'e', Kind: OperandRegNull},
		},
	},
	{
		Mnemonic: "popp", Op: OpPopp, Pattern: "00010111ssdddddeeeee000000000000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "dst1", Letter: 'd', Kind: OperandRegNull},
			{Name: "dst2", Letter: 'e', Kind: OperandRegNull},
		},
	},
	{
		Mnemonic: "jmpa", Op: OpJmpa, Pattern: "00011000ccccaaaaa000000000000000",
		CondLetter: 'c',
		Operands: []Operand{
			{Name: "target", Letter: 'a', Kind: OperandReg},
		},
	},
	{
		Mnemonic: "calla", Op: OpCalla, Pattern: "00011001ccccaaaaa000000000000000",
		CondLetter: 'c',
		Operands: []Operand{
			{Name: "target", Letter: 'a', Kind: OperandReg},
		},
	},
	{
		Mnemonic: "ret", Op: OpRet, Pattern: "00011010000000000000000000000000",
	},
	{
		Mnemonic: "eret", Op: OpEret, Pattern: "00011011000000000000000000000000",
	},
	{
		Mnemonic: "cjmpa", Op: OpCjmpa, Pattern: "00011100ssjjjaaaaabbbbbccccc0000",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "cond", Letter: 'j', Kind: OperandCond8},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "target", Letter: 'c', Kind: OperandReg},
		},
	},
	{
		Mnemonic: "cjmpr", Op: OpCjmpr, Pattern: "00011101ssjjjaaaaabbbbbrrrrrrrrr",
		SizeLetter: 's',
		Operands: []Operand{
			{Name: "cond", Letter: 'j', Kind: OperandCond8},
			{Name: "src1", Letter: 'a', Kind: OperandReg},
			{Name: "src2", Letter: 'b', Kind: OperandReg},
			{Name: "target", Letter: 'r', Kind: OperandRel},
		},
	},
	{
		Mnemonic: "nop", Op: OpNop, Pattern: "00011110000000000000000000000000",
	},
	{
		Mnemonic: "udf", Op: OpUdf, Pattern: "00011111000000000000000000000000",
	},
	{
		Mnemonic: "dbg", Op: OpDbg, Pattern: "00100000000000000000000000000000",
	},
	{
		Mnemonic: "exc", Op: OpExc, Pattern: "00100001iiiiiiiiiiiiiiii00000000",
		Operands: []Operand{
			{Name: "code", Letter: 'i', Kind: OperandImm},
		},
	},
	{
		Mnemonic: "ldm", Op: OpLdm, Pattern: "10000dddddmmmmmmmmmmmmmmmmmmmmmm",
		Operands: []Operand{
			{Name: "dst", Letter: 'd', Kind: OperandRegNull},
			{Name: "mreg", Letter: 'm', Kind: OperandMachineReg},
		},
	},
	{
		Mnemonic: "stm", Op: OpStm, Pattern: "10001dddddmmmmmmmmmmmmmmmmmmmmmm",
		Operands: []Operand{
			{Name: "src", Letter: 'd', Kind: OperandRegNull},
			{Name: "mreg", Letter: 'm', Kind: OperandMachineReg},
		},
	},
	{
		Mnemonic: "jmpr", Op: OpJmpr, Pattern: "110000ccccrrrrrrrrrrrrrrrrrrrrrr",
		CondLetter: 'c',
		Operands: []Operand{
			{Name: "target", Letter: 'r', Kind: OperandRel},
		},
	},
	{
		Mnemonic: "callr", Op: OpCallr, Pattern: "110001ccccrrrrrrrrrrrrrrrrrrrrrr",
		CondLetter: 'c',
		Operands: []Operand{
			{Name: "target", Letter: 'r', Kind: OperandRel},
		},
	},
}

func init() {
	for i := range Table {
		if err := Table[i].Finalize(); err != nil {
			panic(err)
		}
	}
}

// EntriesForMnemonic returns every schema entry sharing a mnemonic, in
// declaration order, for the encoder to disambiguate by operand kind.
func EntriesForMnemonic(mnemonic string) []*Entry {
	var out []*Entry
	for i := range Table {
		if Table[i].Mnemonic == mnemonic {
			out = append(out, &Table[i])
		}
	}
	return out
}
