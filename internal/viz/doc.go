// Package viz is the live terminal view of a running simulation.
//
// Objects are projected onto a Braille canvas around a wireframe Earth,
// coloured by category, with recent impact points highlighted. A side
// panel shows the clock, population counts and an asciigraph debris chart.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	1-4   - Speed presets (1x, 60x, 3600x, 86400x)
//	x/y/z - Rotate the view (upper case rotates back)
//	+/-   - Zoom
//	R     - Rebuild the scenario from scratch
//	T     - Cycle color themes
//	Q     - Quit
package viz
