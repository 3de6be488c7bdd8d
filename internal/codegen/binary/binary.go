// Package binary writes blocks as raw GIF packets, one per block, in the
// format the disassembler reads back.
package binary

import (
	"io"

	"github.com/iley/gifscript/internal/codegen/common"
	"github.com/iley/gifscript/internal/gif"
	"github.com/iley/gifscript/internal/ir"
)

type CodeGenerator struct {
	out *common.Writer
}

func New(out io.Writer) *CodeGenerator {
	return &CodeGenerator{out: common.NewWriter(out)}
}

func (g *CodeGenerator) Emit(block *ir.Block) error {
	words, err := gif.EncodeBlock(block)
	if err != nil {
		return err
	}
	if err := gif.WriteWords(g.out, words); err != nil {
		return err
	}
	return g.out.Err()
}

func (g *CodeGenerator) Close() error {
	return g.out.Err()
}
