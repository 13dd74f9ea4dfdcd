package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/sarchlab/la32sim/insts"
)

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the decode table grouped by addressing mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printTable(cmd.OutOrStdout())
			return nil
		},
	}
}

// tableTree groups the templates by mode. Unreachable templates are tagged
// with the entry that shadows them.
func tableTree() treeprint.Tree {
	templates := insts.Templates()

	shadowedBy := make(map[int]insts.Shadow)
	for _, s := range insts.Shadowed() {
		shadowedBy[s.Index] = s
	}

	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("decode table (%d templates)", len(templates)))

	for _, mode := range insts.Modes() {
		var branch treeprint.Tree
		for i, t := range templates {
			if t.Mode != mode {
				continue
			}
			if branch == nil {
				branch = tree.AddBranch(mode.String())
			}

			value := fmt.Sprintf("%-9s %s mask=0x%08x match=0x%08x", t.Mnemonic, t.Pattern, t.Mask, t.Match)
			if s, ok := shadowedBy[i]; ok {
				branch.AddMetaNode(i, fmt.Sprintf("%s (shadowed by #%d %s)", value, s.ByIndex, s.By.Mnemonic))
				continue
			}
			branch.AddMetaNode(i, value)
		}
	}

	return tree
}

func printTable(w io.Writer) {
	fmt.Fprint(w, tableTree().String())
}
