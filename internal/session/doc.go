// Package session implements the game's navigation state machine.
//
// A Session is a single-owner reducer: every event (start, content loaded,
// fetch failed, link activated, timer tick) is a method that mutates the
// session and, when the event needs an article, returns a FetchRequest for
// the caller to execute. The session itself performs no I/O.
//
// The Controller runs a Session behind a single-writer event loop. It
// executes fetch requests against a wiki.Gateway, feeds timer ticks, and
// publishes read-only Snapshots for a front end.
//
// Design decision: Every request is tagged with a generation number that is
// bumped by each start, navigation, and retry. A result whose generation is
// not the latest is discarded, so overlapping fetches that resolve out of
// order can never corrupt the history.
package session
