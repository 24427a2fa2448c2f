package asm

import (
	"github.com/lookbusy1344/acca/internal/isa"
)

// Result is the output of a successful assembly: the flat byte image and
// the final label table (exposed for -dump-symbols).
type Result struct {
	Image  []byte
	Labels map[string]uint64
}

// pass1Ctx backs label/constant lookups during the address-tracking pass.
// Only symbols already bound (by an earlier label or .def) resolve; forward
// references in .addr/.def expressions are rejected, per DESIGN.md's
// resolution of the two-pass ordering question.
type pass1Ctx struct {
	labels map[string]uint64
	addr   uint64
}

func (c *pass1Ctx) Lookup(name string) (uint64, bool) { v, ok := c.labels[name]; return v, ok }
func (c *pass1Ctx) CurrentAddress() uint64             { return c.addr }

// pass2Ctx backs evaluation during the emission pass, when every label is
// already known.
type pass2Ctx struct {
	labels map[string]uint64
	addr   uint64
}

func (c *pass2Ctx) Lookup(name string) (uint64, bool) { v, ok := c.labels[name]; return v, ok }
func (c *pass2Ctx) CurrentAddress() uint64             { return c.addr }

func alignUp4(addr uint64) uint64 {
	return (addr + 3) &^ 3
}

// Assemble runs the full two-pass pipeline (parse, resolve, encode) over
// one source file and returns the flat output image.
func Assemble(filename, src string) (*Result, error) {
	stmts, err := ParseProgram(filename, src)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]uint64)
	ctx1 := &pass1Ctx{labels: labels}

	for i := range stmts {
		s := &stmts[i]
		if len(s.Labels) > 0 || s.Kind == StmtInstruction {
			ctx1.addr = alignUp4(ctx1.addr)
		}
		for _, name := range s.Labels {
			if _, dup := labels[name]; dup {
				return nil, errAt(s.Pos, "duplicate label %q", name)
			}
			labels[name] = ctx1.addr
		}

		switch s.Kind {
		case StmtInstruction:
			ctx1.addr += 4
		case StmtDirectiveAddr:
			v, err := ParseEvalExpr(s.AddrExpr, s.Pos, ctx1)
			if err != nil {
				return nil, err
			}
			ctx1.addr = v
		case StmtDirectiveWrite:
			ctx1.addr += uint64(len(s.Operands)) * uint64(s.WriteSize.ByteSize())
		case StmtDirectiveDef:
			v, err := ParseEvalExpr(s.DefExpr, s.Pos, ctx1)
			if err != nil {
				return nil, err
			}
			if _, dup := labels[s.DefName]; dup {
				return nil, errAt(s.Pos, "duplicate symbol %q", s.DefName)
			}
			labels[s.DefName] = v
		}
	}

	img := newImage()
	ctx2 := &pass2Ctx{labels: labels}

	for i := range stmts {
		s := &stmts[i]
		if len(s.Labels) > 0 || s.Kind == StmtInstruction {
			ctx2.addr = alignUp4(ctx2.addr)
		}

		switch s.Kind {
		case StmtInstruction:
			word, err := EncodeInstruction(s, ctx2)
			if err != nil {
				return nil, err
			}
			img.writeWord(ctx2.addr, word)
			ctx2.addr += 4
		case StmtDirectiveAddr:
			v, err := ParseEvalExpr(s.AddrExpr, s.Pos, ctx2)
			if err != nil {
				return nil, err
			}
			ctx2.addr = v
		case StmtDirectiveWrite:
			for _, opText := range s.Operands {
				v, err := ParseEvalExpr(opText, s.Pos, ctx2)
				if err != nil {
					return nil, err
				}
				img.writeSized(ctx2.addr, v, s.WriteSize)
				ctx2.addr += uint64(s.WriteSize.ByteSize())
			}
		case StmtDirectiveDef:
			// already bound in pass 1; nothing to emit.
		}
	}

	return &Result{Image: img.buf, Labels: labels}, nil
}

// image is a flat, growable little-endian byte buffer addressed from zero.
type image struct {
	buf []byte
}

func newImage() *image { return &image{} }

func (im *image) ensure(end uint64) {
	if uint64(len(im.buf)) < end {
		grown := make([]byte, end)
		copy(grown, im.buf)
		im.buf = grown
	}
}

func (im *image) writeWord(addr uint64, word uint32) {
	im.ensure(addr + 4)
	im.buf[addr] = byte(word)
	im.buf[addr+1] = byte(word >> 8)
	im.buf[addr+2] = byte(word >> 16)
	im.buf[addr+3] = byte(word >> 24)
}

func (im *image) writeSized(addr uint64, v uint64, s isa.Size) {
	n := s.ByteSize()
	im.ensure(addr + uint64(n))
	for i := 0; i < n; i++ {
		im.buf[addr+uint64(i)] = byte(v >> (8 * i))
	}
}
