// Package main provides the entry point for the wikirace CLI.
//
// wikirace is a terminal game: you start on one encyclopedia article and
// race to another by following links, against the clock.
//
// Usage:
//
//	wikirace play
//	wikirace play --challenge 3
//	wikirace challenges
//
// See --help for all available options.
package main

// main is the entry point for wikirace.
func main() {
	Execute()
}
