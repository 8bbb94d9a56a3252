// Package routes maps the routes tree onto URLs, identifiers and layouts.
//
// Every directory segment between the routes root and a route file is
// classified once:
//
//	users        literal     /users          users
//	[id]         parameter   /<id>           id
//	blog.post    dotted      /blog/post      blog_post
//	docs.        dotted      /docs/          docs_index
//
// Resolve turns the classified segments into a Descriptor. NearestLayout
// and Layouts.Nearest find the layout a page inherits from; pages with no
// layout inherit from RootTemplate.
package routes
