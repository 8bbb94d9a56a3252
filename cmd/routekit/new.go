package main

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/routekit/internal/templates"
)

var moduleRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._~/-]*$`)

func newCmd() *cobra.Command {
	var (
		template    string
		module      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a new routekit project",
		Long: `Create a new routekit project at path. The path must not exist.

Templates:
  ` + strings.Join(templates.List(), ", ") + `

Examples:
  routekit new site
  routekit new site --module=example.com/site
  routekit new api --template=api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(args[0], template, module, description)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "default", "Project template")
	cmd.Flags().StringVarP(&module, "module", "m", "", "Go module path (default: the directory name)")
	cmd.Flags().StringVarP(&description, "description", "d", "A routekit site", "Project description")

	return cmd
}

func runNew(path, templateName, module, description string) error {
	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	name := filepath.Base(dir)
	if module == "" {
		module = name
	}
	if !moduleRe.MatchString(module) {
		warn("%q may not be a valid module path", module)
	}

	if err := tmpl.Create(dir, templates.Config{
		ProjectName:     name,
		ModulePath:      module,
		Description:     description,
		RoutekitVersion: moduleVersion(),
	}); err != nil {
		return err
	}

	success("Created %s from the %s template", path, templateName)
	info("cd %s", path)
	info("go mod tidy")
	info("routekit run")
	return nil
}

// moduleVersion is the version new projects require.
func moduleVersion() string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "latest"
}
