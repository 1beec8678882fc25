// Package ui provides the small terminal components profdash prints outside
// the dashboard: status symbols, a spinner for slow steps, phase lines and
// simple tables.
//
// Colors are ANSI codes so the user's terminal theme picks the shades.
// DisableColors switches every style to plain text for --no-color and
// NO_COLOR.
//
//	s := ui.NewSpinner("Checking Python interpreter")
//	s.Start()
//	// ... do work ...
//	s.Finish(err)
package ui
