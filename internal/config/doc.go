// Package config provides configuration parsing for routekit projects.
//
// The configuration is stored in routekit.toml at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	name = "shop"
//
//	[paths]
//	src = "src"
//	routes = "src/routes"
//	root_template = "src/index.html"
//	static = "static"
//
//	[build]
//	output = "build"
//
//	[dev]
//	host = "localhost"
//	port = 8000
//	reload_port = 35729
//	watch = ["src", "static"]
//	ignore = ["*.swp"]
//	debounce = "100ms"
//
//	[publish]
//	bucket = "shop-assets"
//	prefix = "static/"
//	region = "eu-west-1"
//
// Every key is optional; relative paths resolve against the directory
// holding routekit.toml.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Routes:", cfg.RoutesPath())
package config
