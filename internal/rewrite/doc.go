// Package rewrite turns route files into handlers for the generated
// module.
//
// Page rewrites a +page document: its <handler> loader is renamed to the
// route identifier and its returns become blueprint.Render calls for the
// page's template. Endpoint rewrites a +server.go file into one handler per
// top-level function, the function name giving the HTTP method. Both keep
// any other declarations so they can be carried into the module.
package rewrite
