package emit

import "github.com/vango-dev/routekit/pkg/blueprint"

// Template returns the contents of a template file: the extends directive
// naming parent, followed by body.
func Template(parent, body string) []byte {
	return []byte(blueprint.Extends(parent) + "\n" + body)
}

// Parent returns the parent named by a template's extends directive.
func Parent(src []byte) (string, bool) {
	return blueprint.Parent(src)
}
