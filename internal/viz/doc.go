// Package viz is the terminal front end for the gravity simulation.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: renders snapshots and forwards input to the simulation
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - [Viewport]: maps screen-space positions onto canvas sub-pixels
//
// # Input
//
//	Drag      - Add a body; the drag sets its initial velocity
//	Up/Down   - Grow or shrink the next body
//	Space/P   - Pause/Resume (traces keep growing while paused)
//	T         - Toggle tracing
//	I         - Toggle path interpolation
//	A         - Toggle tapering; [ and ] change the taper length
//	C         - Colour paths by body
//	F         - Show net forces
//	R         - Remove every body
//	Z         - Fit the view to the bodies
//	Shift+T   - Cycle themes
//	Q         - Quit
package viz
