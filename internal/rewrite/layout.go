package rewrite

import (
	"github.com/vango-dev/routekit/internal/errors"
	"github.com/vango-dev/routekit/internal/markup"
)

// Layout prepares a layout document for the template emitter. Layouts
// cannot carry handler code; a handler block is removed and reported
// through hadHandler.
func Layout(file string, src []byte) (body string, hadHandler bool, err error) {
	doc, err := markup.Parse(string(src), HandlerTag)
	if err != nil {
		return "", false, errors.New("E100").WithFile(file).Wrap(err)
	}
	_, hadHandler = doc.ExtractTag(HandlerTag)
	return doc.PrettyPrint(), hadHandler, nil
}
