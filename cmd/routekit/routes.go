package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/routekit/internal/build"
	"github.com/vango-dev/routekit/internal/emit"
)

// routeView is the printed form of a registered route.
type routeView struct {
	Method  string `json:"method" yaml:"method"`
	Pattern string `json:"pattern" yaml:"pattern"`
	Name    string `json:"name" yaml:"name"`
	File    string `json:"file" yaml:"file"`
}

func routesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Compile the route tree without writing anything and print every
registered route.

Examples:
  routekit routes
  routekit routes --format=json
  routekit routes --format=yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			result, err := build.New(cfg, build.Options{Check: true}).Build(context.Background())
			if err != nil {
				return err
			}
			return printRoutes(os.Stdout, result.Routes, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, yaml)")

	return cmd
}

func printRoutes(w io.Writer, routes []emit.Route, format string) error {
	views := make([]routeView, 0, len(routes))
	for _, r := range routes {
		views = append(views, routeView(r))
	}

	switch format {
	case "table":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "METHOD\tPATTERN\tNAME\tFILE")
		for _, v := range views {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Method, v.Pattern, v.Name, v.File)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}
