// Package templates provides project scaffolding templates.
//
// Each template is a set of files rendered with text/template using [[ ]]
// delimiters, so route markup keeps its {{ }} actions untouched.
//
// # Available Templates
//
//   - default: pages, a layout and an API endpoint
//   - minimal: a single page
//   - api: JSON endpoints only
//
// # Usage
//
//	tmpl, err := templates.Get("default")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(projectDir, templates.Config{
//	    ProjectName: "site",
//	    ModulePath:  "example.com/site",
//	}); err != nil {
//	    return err
//	}
//
// # Template Variables
//
//	[[.ProjectName]]      - Name of the project
//	[[.ModulePath]]       - Go module path
//	[[.Description]]      - Project description
//	[[.RoutekitVersion]]  - routekit version required in go.mod
package templates
