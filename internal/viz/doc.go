// Package viz renders the hopalong levels into a terminal.
//
// Points are plotted on a braille [Canvas] (2x4 dots per cell), coloured by
// the hue of the subset that last touched the cell, and projected through a
// perspective [Projector] that follows the eased camera.
//
// # Key Bindings
//
//	Up/K      - Speed up
//	Down/J    - Slow down
//	Left/H    - Rotate left
//	Right/L   - Rotate right
//	R         - Reset settings
//	P         - Toggle pointer lock
//	C         - Recenter camera
//	M         - Toggle curated/random mode
//	T         - Cycle themes
//	?         - Show help overlay
//	Q         - Quit
package viz
