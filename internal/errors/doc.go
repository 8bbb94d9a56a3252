// Package errors provides structured, actionable error messages for routekit.
//
// Every failure surfaced by the compiler carries a code that maps to a
// category and a short message:
//   - structural: embedded or endpoint Go code that fails to parse, or a
//     handler shape the rewriters cannot handle
//   - resolution: bad path parameters and name collisions in the generated
//     module or template set
//   - filesystem: missing root documents, routes or static directories, and
//     failed writes
//   - invocation: CLI misuse such as scaffolding over an existing path
//   - config: malformed routekit.toml
//
// # Usage
//
//	err := errors.New("E100").
//	    WithLocation("src/routes/users/[id]/+page.html", 7, 3).
//	    WithDetail("expected ';', found 'return'")
//
//	fmt.Println(err.Format())
//
// Nothing is retried automatically; the CLI prints the formatted error and
// exits non-zero, the dev loop logs it and waits for the next change.
package errors
