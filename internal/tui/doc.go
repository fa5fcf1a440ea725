// Package tui is the interactive terminal front end of wikirace.
//
// The package is a thin consumer of a session controller: it renders the
// snapshots the controller publishes and turns key presses into controller
// commands. It holds no game state of its own beyond what is needed for
// display (selection, focus, filter text).
//
// Design decision: We use charmbracelet/bubbletea because the game is a
// stream of asynchronous state changes (fetch completions, timer ticks)
// that maps directly onto the Elm-style message loop. The link list uses
// bubbles/list, which gives filtering with "/" for free.
package tui
