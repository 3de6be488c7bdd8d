// Package compiler wires the lexer, parser, machine and a backend together
// for the command line tools.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/iley/gifscript/internal/codegen"
	"github.com/iley/gifscript/internal/codegen/ccode"
	"github.com/iley/gifscript/internal/codegen/common"
	"github.com/iley/gifscript/internal/disasm"
	"github.com/iley/gifscript/internal/ir"
	"github.com/iley/gifscript/internal/lexer"
	"github.com/iley/gifscript/internal/logger"
	"github.com/iley/gifscript/internal/machine"
	"github.com/iley/gifscript/internal/opt"
	"github.com/iley/gifscript/internal/parser"
)

var ErrDuplicateBlock = errors.New("block defined in more than one input")

type Config struct {
	Target        codegen.Target
	EmitMode      ccode.EmitMode
	Optimizations opt.Flags
	Logger        *logger.Logger
}

func (c Config) log() *logger.Logger {
	if c.Logger == nil {
		return logger.Discard
	}
	return c.Logger
}

type Result struct {
	// Blocks lists the emitted block names in output order.
	Blocks []string
}

// Compile parses one source and returns its optimized blocks in definition
// order.
func Compile(ctx context.Context, name string, r io.Reader, cfg Config) ([]*ir.Block, error) {
	var blocks []*ir.Block
	m := newMachine(ctx, cfg, cfg.log().With(name), func(b *ir.Block) error {
		blocks = append(blocks, b)
		return nil
	})
	if err := parser.New(lexer.New(r, name), m).Parse(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// CompileFile compiles one source straight into the backend chosen by cfg.
func CompileFile(ctx context.Context, name string, r io.Reader, cfg Config, out io.Writer) (Result, error) {
	gen, err := codegen.New(cfg.Target, out, cfg.EmitMode)
	if err != nil {
		return Result{}, err
	}
	log := cfg.log().With(name)
	m := newMachine(ctx, cfg, log, emitTo(gen, log))
	if err := parser.New(lexer.New(r, name), m).Parse(); err != nil {
		return Result{}, err
	}
	if err := gen.Close(); err != nil {
		return Result{}, err
	}
	return Result{Blocks: m.Blocks()}, nil
}

// CompileFiles compiles every named file concurrently, then emits all
// blocks through one backend in argument order. Block names must be unique
// across the inputs.
func CompileFiles(ctx context.Context, names []string, cfg Config, out io.Writer) (Result, error) {
	perFile := make([][]*ir.Block, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			defer f.Close()
			blocks, err := Compile(gctx, name, f, cfg)
			if err != nil {
				return err
			}
			perFile[i] = blocks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	owner := make(map[string]string)
	var all []*ir.Block
	for i, blocks := range perFile {
		for _, b := range blocks {
			if prev, ok := owner[b.Name]; ok {
				return Result{}, fmt.Errorf("%s: %s also in %s: %w", names[i], b.Name, prev, ErrDuplicateBlock)
			}
			owner[b.Name] = names[i]
			all = append(all, b)
		}
	}
	return Emit(cfg, all, out)
}

// Emit writes already compiled blocks through the backend chosen by cfg.
func Emit(cfg Config, blocks []*ir.Block, out io.Writer) (Result, error) {
	gen, err := codegen.New(cfg.Target, out, cfg.EmitMode)
	if err != nil {
		return Result{}, err
	}
	emit := emitTo(gen, cfg.log())
	var res Result
	for _, b := range blocks {
		if err := emit(b); err != nil {
			return Result{}, err
		}
		res.Blocks = append(res.Blocks, b.Name)
	}
	if err := gen.Close(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// DisassembleFile reads a GIF packet stream and re-emits it through the
// backend chosen by cfg.
func DisassembleFile(ctx context.Context, name string, r io.Reader, cfg Config, out io.Writer) (Result, error) {
	gen, err := codegen.New(cfg.Target, out, cfg.EmitMode)
	if err != nil {
		return Result{}, err
	}
	log := cfg.log().With(name)
	m := newMachine(ctx, cfg, log, emitTo(gen, log))
	if err := disasm.Disassemble(r, m, log); err != nil {
		return Result{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := gen.Close(); err != nil {
		return Result{}, err
	}
	return Result{Blocks: m.Blocks()}, nil
}

func newMachine(ctx context.Context, cfg Config, log *logger.Logger, emit machine.EmitterFunc) *machine.Machine {
	return machine.New(
		machine.WithOptimizations(cfg.Optimizations),
		machine.WithLogger(log),
		machine.WithEmitter(machine.EmitterFunc(func(b *ir.Block) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return emit(b)
		})),
	)
}

func emitTo(gen common.CodeGenerator, log *logger.Logger) machine.EmitterFunc {
	return func(b *ir.Block) error {
		log.Infof("emitting block %s", b.Name)
		if log.Enabled(logger.LevelDebug) {
			var sb strings.Builder
			b.Print(&sb)
			log.Debugf("%s", strings.TrimSuffix(sb.String(), "\n"))
		}
		return gen.Emit(b)
	}
}
