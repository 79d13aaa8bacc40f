// Package hanoi generates the canonical Towers of Hanoi move sequence.
//
// The package defines the puzzle primitives:
//
//   - [Peg]: one of the three fixed towers
//   - [Move]: relocation of a single top disk between two pegs
//   - [Solve]: lazy recursive generator of the 2^n - 1 moves
//
// # Example
//
//	for m := range hanoi.Solve(3, hanoi.Source, hanoi.Auxiliary, hanoi.Target) {
//		fmt.Println(m)
//	}
//
// Solve performs no bounds checking. Callers clamp or validate the disk
// count first with [ClampDisks], [ParseDisks] or [ValidateDisks].
package hanoi
