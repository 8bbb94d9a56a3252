// Package blueprint is the runtime imported by generated route modules.
//
// A generated module declares one Blueprint and registers a handler per
// route on it:
//
//	var bp = blueprint.New("app")
//
//	func users_id(w http.ResponseWriter, r *http.Request, id string) blueprint.Response {
//		return blueprint.Render("users_id_+page.html", lookup(id))
//	}
//
//	var _ = bp.Route("GET", "/users/<id>", "users_id", func(w http.ResponseWriter, r *http.Request) blueprint.Response {
//		return users_id(w, r, blueprint.Param(r, "id"))
//	})
//
// Serve mounts blueprints on a chi router next to the static files and
// serves them until the context ends. Templates are html/template files; a
// template beginning with an extends directive is rendered inside its
// parent wherever the parent calls {{slot}}.
package blueprint
