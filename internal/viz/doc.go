// Package viz draws the monitored simulation in the terminal.
//
// [Scene] is the drawing surface: the entity manager and the weather overlay
// issue create and update calls against it, and the TUI reads consistent
// [Frame] copies from it. [Canvas] renders frames with braille dots, placing
// entity and base glyphs on top.
//
// # Key Bindings
//
//	s     - Start or continue the simulation
//	[ ]   - Scrub the timeline back and forward
//	End   - Jump to the latest completed time
//	Tab   - Inspect the next entity
//	t     - Cycle color themes
//	?     - Toggle full help
//	q     - Quit
package viz
