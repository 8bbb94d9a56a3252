// Package build runs routekit build passes.
//
// A pass turns the project's route tree into a generated Go module and a
// tree of templates:
//
//	builder := build.New(cfg, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A full pass removes the output directory, writes the skeleton, walks the
// routes and emits. An incremental pass keeps the tree and rewrites only
// files whose digest changed. Any error aborts the pass before the walk
// output is emitted; a failed full pass removes the output directory.
//
// # Output Structure
//
//	build/
//	├── app/
//	│   ├── server.go          # bootstrap (package main)
//	│   ├── blueprints/
//	│   │   ├── doc.go
//	│   │   └── app.go         # generated module
//	│   ├── middleware/
//	│   ├── lib/
//	│   └── static/            # copy of ./static
//	├── templates/
//	│   ├── index.html         # copy of the root document
//	│   └── ...                # one file per page and layout
//	└── manifest.json          # BLAKE3 digest per file
//
// In check mode nothing is written; Result.Diffs lists unified diffs
// between the computed tree and the disk.
package build
