// Package viz is the interactive terminal front end, built on Bubble Tea.
//
// The model holds a disk count field and the animated board. Starting a solve
// runs a [player.Player] in its own goroutine; the player talks to the model
// through [Renderer], which turns every drawing call into a message. Disks
// are drawn on a braille [Canvas] and interpolated along their trajectory on
// every frame tick.
//
// # Key Bindings
//
//	0-9       - Edit the disk count
//	Enter/Tab - Apply the disk count (clamped to 1..12)
//	S         - Start the solve
//	R         - Reset to the initial board
//	T         - Cycle color themes
//	Q         - Quit
package viz
