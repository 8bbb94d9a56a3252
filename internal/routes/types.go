package routes

// Kind classifies a file under the routes root by its base name.
type Kind int

const (
	KindOther Kind = iota
	KindPage
	KindEndpoint
	KindLayout
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindEndpoint:
		return "endpoint"
	case KindLayout:
		return "layout"
	default:
		return "other"
	}
}

// Entry is a file discovered under the routes root. Entries are immutable
// for the duration of a build pass.
type Entry struct {
	// Path is the absolute file path.
	Path string

	// Rel is the slash-separated path relative to the routes root.
	Rel string

	// Dir is the absolute parent directory.
	Dir string

	Kind Kind
}

// SegmentKind is the grammar class of one directory segment.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentParam
	SegmentDotted
	SegmentIndex
)

// Segment is a classified directory segment. Dotted segments carry their
// parts, each of which is a literal, parameter or index.
type Segment struct {
	Kind SegmentKind

	// Raw is the segment text as it appears on disk.
	Raw string

	// Name is the literal text or the parameter name.
	Name string

	Parts []Segment
}

// Param is a path parameter declared by a bracketed segment.
type Param struct {
	Name string

	// Position is the 0-based left-to-right order of the parameter.
	Position int
}

// Descriptor is the URL pattern, identifier and parameters derived from a
// route file's location.
type Descriptor struct {
	// Pattern is the URL pattern, e.g. "/users/<id>".
	Pattern string

	// Identifier is the canonical route identifier, e.g. "users_id". The
	// root route has an empty identifier.
	Identifier string

	Params []Param
}

// ParamNames returns the parameter names in path order.
func (d Descriptor) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return names
}
