// Package challenge provides the fixed catalog of (start, destination)
// article pairs a game session is drawn from.
//
// The built-in catalog is embedded at build time from catalog.yaml. A user
// configuration file may supply a replacement list, which is validated once
// when loaded and is then treated as fixed for the life of the process.
package challenge
