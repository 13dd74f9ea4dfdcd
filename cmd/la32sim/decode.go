package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/sarchlab/la32sim/emu"
	"github.com/sarchlab/la32sim/insts"
)

// dumper shows struct fields rather than the Stringer forms of the decoded
// types.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
}

func newDecodeCmd() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "decode WORD...",
		Short: "Decode hexadecimal instruction words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return decodeWords(cmd.OutOrStdout(), args, dump)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the full decoded structure")
	return cmd
}

func parseWord(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("failed to parse instruction word %q: %w", s, err)
	}
	return uint32(v), nil
}

func decodeWords(w io.Writer, args []string, dump bool) error {
	decoder := insts.NewDecoder()

	for _, arg := range args {
		word, err := parseWord(arg)
		if err != nil {
			return err
		}

		inst := decoder.Decode(word)
		fmt.Fprintf(w, "%08x  %s  # %s\n", word, inst, emu.Disassemble(word))
		if dump {
			dumper.Fdump(w, inst)
		}
	}
	return nil
}
