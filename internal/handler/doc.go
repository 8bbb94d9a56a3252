// Package handler parses embedded and standalone handler code into an
// intermediate form the rewriters can reshape without touching the rest of
// the syntax tree.
//
// A Fragment is the parsed source: hoisted imports plus the remaining
// top-level declarations. Fragment.Build turns one function into an IR by
// extending its signature to
//
//	func name(r *http.Request, <declared params>, <path params> string)
//
// and collecting its return statements. Printing an IR goes through
// go/printer with the fragment's own comments, so code inside a handler
// keeps its formatting and comments in the generated module.
package handler
