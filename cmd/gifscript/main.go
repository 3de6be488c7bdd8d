package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/iley/gifscript/internal/cli"
	"github.com/iley/gifscript/internal/codegen/common"
	"github.com/iley/gifscript/internal/compiler"
	"github.com/iley/gifscript/internal/opt"
)

var (
	flags         cli.Flags
	keepDeadStore bool
	noTagPrim     bool
)

var rootCmd = &cobra.Command{
	Use:     "gifscript [flags] <file.gs>...",
	Short:   "GIFScript compiler",
	Long:    "Compile GIFScript sources into GS register writes for the PS2 GIF.",
	Version: common.Version,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		optFlags := opt.All
		if keepDeadStore {
			optFlags = optFlags.Without(opt.DeadStoreElimination)
		}
		if noTagPrim {
			optFlags = optFlags.Without(opt.TagPrim)
		}

		log := flags.Logger(cmd.ErrOrStderr())
		cfg, err := flags.Config(optFlags, log)
		if err != nil {
			return err
		}
		// Errors past this point are compile errors, not usage errors.
		cmd.SilenceUsage = true

		out, closeFn, err := flags.OpenOutput(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		log.Debugf("backend %s, optimizations %s", cfg.Target, optFlags)
		_, err = compiler.CompileFiles(cmd.Context(), args, cfg, out)
		return flags.Finish(closeFn, err)
	},
}

func init() {
	flags.Register(rootCmd, "c_code")
	rootCmd.Flags().BoolVar(&keepDeadStore, "keep-deadstore", false, "keep writes that are overwritten before use")
	rootCmd.Flags().BoolVar(&noTagPrim, "no-tag-prim", false, "keep PRIM as a register write instead of the GIF tag PRIM field")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
