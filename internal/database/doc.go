// Package database provides SQLite-based storage for wikirace.
//
// This package implements the ArticleCache, which stores fetched article
// content (rendered markup, outgoing links, and redirect aliases) keyed by
// normalized title so that repeated visits to a page do not hit the network.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets a second wikirace process read while one writes
//
// Only encyclopedia content is stored. Game state (history, timer, phase)
// never touches the disk.
package database
