package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iley/gifscript/internal/cli"
	"github.com/iley/gifscript/internal/codegen/common"
	"github.com/iley/gifscript/internal/compiler"
	"github.com/iley/gifscript/internal/opt"
)

var (
	flags         cli.Flags
	deadStoreElim bool
	tagPrim       bool
)

var rootCmd = &cobra.Command{
	Use:     "tpircsfig [flags] <file.bin>",
	Short:   "GIF packet disassembler",
	Long:    "Turn a raw GIF packet stream back into GIFScript or any other backend.",
	Version: common.Version,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		optFlags := opt.None
		if deadStoreElim {
			optFlags |= opt.DeadStoreElimination
		}
		if tagPrim {
			optFlags |= opt.TagPrim
		}

		log := flags.Logger(cmd.ErrOrStderr())
		cfg, err := flags.Config(optFlags, log)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input file: %w", err)
		}
		defer in.Close()

		out, closeFn, err := flags.OpenOutput(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		_, err = compiler.DisassembleFile(cmd.Context(), args[0], in, cfg, out)
		return flags.Finish(closeFn, err)
	},
}

func init() {
	flags.Register(rootCmd, "gifscript")
	rootCmd.Flags().BoolVar(&deadStoreElim, "dead-store", false, "drop writes that are overwritten before use")
	rootCmd.Flags().BoolVar(&tagPrim, "tag-prim", false, "fold the first PRIM write back into the GIF tag")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
