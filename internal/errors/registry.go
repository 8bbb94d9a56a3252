package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Structural Errors (E100-E109)
	// ============================================

	"E100": {
		Category: CategoryStructural,
		Message:  "Handler code failed to parse",
	},
	"E101": {
		Category: CategoryStructural,
		Message:  "Missing loader function",
		Detail:   "The first function in a page's <handler> block must be named load.",
	},
	"E102": {
		Category: CategoryStructural,
		Message:  "Unsupported handler signature",
	},

	// ============================================
	// Resolution Errors (E110-E119)
	// ============================================

	"E110": {
		Category: CategoryResolution,
		Message:  "Invalid path parameter",
	},
	"E111": {
		Category: CategoryResolution,
		Message:  "Parameter name conflict",
	},
	"E112": {
		Category: CategoryResolution,
		Message:  "Handler name collision",
		Detail:   "Two routes generate the same handler identifier.",
	},
	"E113": {
		Category: CategoryResolution,
		Message:  "Template name collision",
		Detail:   "Two route files generate the same template name.",
	},
	"E114": {
		Category: CategoryResolution,
		Message:  "Import name conflict",
		Detail:   "Two hoisted imports bind the same package name to different paths.",
	},
	"E115": {
		Category: CategoryResolution,
		Message:  "Declaration name collision",
		Detail:   "A top-level declaration carried into the generated module is declared twice.",
	},
	"E116": {
		Category: CategoryResolution,
		Message:  "Invalid route segment",
		Detail:   "An empty dotted part marks an index route and may only end the path.",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid routekit.toml",
		Detail:   "The routekit.toml configuration file is malformed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is invalid.",
	},

	// ============================================
	// Invocation Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryInvocation,
		Message:  "Path already exists",
		Detail:   "A file or directory already exists at the scaffold target.",
	},
	"E141": {
		Category: CategoryInvocation,
		Message:  "Not a routekit project",
		Detail:   "The current directory is not a routekit project. Run this command from a directory with routekit.toml.",
	},
	"E142": {
		Category: CategoryInvocation,
		Message:  "Backend failed to start",
	},
	"E145": {
		Category: CategoryInvocation,
		Message:  "Invalid template",
		Detail:   "The specified project template doesn't exist.",
	},
	"E146": {
		Category: CategoryInvocation,
		Message:  "Go not found",
		Detail:   "Go is not installed or not in PATH.",
	},

	// ============================================
	// Filesystem Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryFilesystem,
		Message:  "Root template not found",
		Detail:   "The root document copied into the templates directory does not exist.",
	},
	"E161": {
		Category: CategoryFilesystem,
		Message:  "Routes directory not found",
	},
	"E162": {
		Category: CategoryFilesystem,
		Message:  "Static directory not found",
	},
	"E163": {
		Category: CategoryFilesystem,
		Message:  "Output write failed",
	},
	"E164": {
		Category: CategoryFilesystem,
		Message:  "Module path not found",
		Detail:   "The project's go.mod could not be read or has no module directive.",
	},
	"E165": {
		Category: CategoryFilesystem,
		Message:  "Route file unreadable",
	},
	"E170": {
		Category: CategoryFilesystem,
		Message:  "Static publish failed",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
