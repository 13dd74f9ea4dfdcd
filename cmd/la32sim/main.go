// Package main provides the entry point for la32sim, a functional
// LoongArch32 simulator.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/la32sim/internal/translate"
)

var f = translate.From

var (
	Version = "dev"
	Commit  = "none"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "la32sim",
		Short: "Functional LoongArch32 simulator",
		Long: `la32sim decodes and executes LoongArch32 programs. It runs ELF or raw
images in batch mode or under an interactive monitor.`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newRunCmd(), newDecodeCmd(), newTableCmd())
	return rootCmd
}

func main() {
	err := newRootCmd().Execute()

	var exit *exitError
	switch {
	case errors.As(err, &exit):
		os.Exit(exit.code)
	case err != nil:
		fmt.Fprintln(os.Stderr, f("Error: %v", err))
		os.Exit(2)
	}
}
