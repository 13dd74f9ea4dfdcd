// Package insts provides LoongArch32 (reduced) instruction definitions and
// decoding.
//
// Decoding is table driven. Every instruction is described by a Template: a
// 32-symbol bit pattern over {0, 1, ?}, a mnemonic, an addressing Mode and
// an Op. Patterns are compiled once into a (Mask, Match) pair and a word is
// matched against the table in declaration order; the first template whose
// fixed bits agree with the word wins. The table ends with a catch-all
// template so that matching is total.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00100823) // add.w $r3, $r1, $r2
//	fmt.Printf("Op: %v, Rd: %d, Rj: %d, Rk: %d\n", inst.Op, inst.Rd, inst.Rj, inst.Rk)
package insts
