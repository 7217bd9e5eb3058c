// Package errors provides structured, coded errors for the vmctl tooling.
//
// The view-model core itself only returns sentinel errors. Everything
// around it (configuration, snapshot feeds, the inspection server and the
// CLI) reports failures through ViewModelError so that operators get:
//   - a stable code (e.g. "E203") to search for
//   - a short message and a longer detail
//   - a hint on how to fix the problem
//
// # Error Categories
//
//   - config: configuration file and environment problems
//   - feed: snapshot feed sources and decoding
//   - inspect: inspection server requests
//   - cli: command-line usage
//
// # Usage
//
//	err := errors.New("E203").
//	    WithDetail("line 4: unexpected end of JSON input").
//	    WithSuggestion("Each line must hold one JSON group snapshot")
//
//	errors.PrintError(err)
//	// ERROR E203: Snapshot decode failed
//	//
//	//   line 4: unexpected end of JSON input
//	//
//	//   Hint: Each line must hold one JSON group snapshot
package errors
