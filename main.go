// Package main provides a pointer to the la32sim CLI.
// la32sim is a functional LoongArch32 simulator.
//
// For the full CLI, use: go run ./cmd/la32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("la32sim - LoongArch32 functional simulator")
	fmt.Println("")
	fmt.Println("Usage: la32sim <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run [image]    Run an ELF or raw image (built-in image if omitted)")
	fmt.Println("  decode WORD    Decode instruction words")
	fmt.Println("  table          Print the decode table")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/la32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/la32sim' instead.")
	}
}
