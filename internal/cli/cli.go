// Package cli holds the flags shared by the gifscript and tpircsfig
// commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iley/gifscript/internal/codegen"
	"github.com/iley/gifscript/internal/codegen/ccode"
	"github.com/iley/gifscript/internal/compiler"
	"github.com/iley/gifscript/internal/logger"
	"github.com/iley/gifscript/internal/opt"
)

type Flags struct {
	Output   string
	Backend  string
	EmitMode string
	Verbose  bool
	Quiet    bool
}

// Register adds the shared flags to cmd with backend as the default
// backend.
func (f *Flags) Register(cmd *cobra.Command, backend string) {
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "output file name (default stdout)")
	cmd.Flags().StringVarP(&f.Backend, "backend", "b", backend, "backend: "+strings.Join(codegen.TargetNames(), ", "))
	cmd.Flags().StringVar(&f.EmitMode, "emit-mode", "defs", "c_code emit mode: defs or magic")
	cmd.Flags().BoolVarP(&f.Verbose, "verbose", "v", false, "log every step")
	cmd.Flags().BoolVarP(&f.Quiet, "quiet", "q", false, "log errors only")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// Logger returns a stderr logger at the level the flags ask for. Without
// flags the level comes from GIFSCRIPT_LOG, defaulting to warnings.
func (f *Flags) Logger(stderr io.Writer) *logger.Logger {
	level := logger.LevelFromEnv(logger.LevelWarn)
	switch {
	case f.Verbose:
		level = logger.LevelDebug
	case f.Quiet:
		level = logger.LevelError
	}
	return logger.New(stderr, level)
}

// Config builds the compiler configuration with the given optimizations.
func (f *Flags) Config(flags opt.Flags, log *logger.Logger) (compiler.Config, error) {
	target, err := codegen.TargetFromName(f.Backend)
	if err != nil {
		return compiler.Config{}, err
	}
	mode, err := ccode.EmitModeFromName(f.EmitMode)
	if err != nil {
		return compiler.Config{}, err
	}
	return compiler.Config{
		Target:        target,
		EmitMode:      mode,
		Optimizations: flags,
		Logger:        log,
	}, nil
}

// OpenOutput opens the output file, or stdout when none was given. The
// returned close function is a no-op for stdout.
func (f *Flags) OpenOutput(stdout io.Writer) (io.Writer, func() error, error) {
	if f.Output == "" || f.Output == "-" {
		return stdout, func() error { return nil }, nil
	}
	file, err := os.Create(f.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return file, file.Close, nil
}

// Finish closes the output and removes it when the run failed, so no
// partial file is left behind.
func (f *Flags) Finish(closeFn func() error, runErr error) error {
	err := errors.Join(runErr, closeFn())
	if runErr != nil && f.Output != "" && f.Output != "-" {
		os.Remove(f.Output)
	}
	return err
}
