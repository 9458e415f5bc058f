// Package build defines the collaborator a tenant's watcher calls into to
// turn a project directory's sources into the pair the runtime needs: a
// single script source string and the route config bytes. The real
// multi-language bundler this delegates to in production is an external
// collaborator; this package only defines the interface plus a dev-mode
// stub sufficient to exercise watcher and dispatch end-to-end.
package build

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Output is the result of one build: the script source to hand to a Script
// Context, and the raw route config bytes to hand to routeconfig.Parse.
type Output struct {
	ScriptSource string
	RouteConfig  []byte
}

// Pipeline turns a project directory into an Output.
type Pipeline interface {
	Build(dir string) (*Output, error)
}

// DevPipeline is a stand-in bundler: it reads main.mjs and routes.yml
// verbatim from the project root, with no bundling, minification, or
// TypeScript transpilation. Good enough to drive the runtime in
// development and in tests; a real pipeline is swapped in for production.
type DevPipeline struct {
	fs afero.Fs
}

// NewDevPipeline creates a DevPipeline backed by fs. A nil fs uses the real
// filesystem.
func NewDevPipeline(fs afero.Fs) *DevPipeline {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DevPipeline{fs: fs}
}

// Build reads dir/main.mjs and dir/routes.yml.
func (p *DevPipeline) Build(dir string) (*Output, error) {
	script, err := afero.ReadFile(p.fs, filepath.Join(dir, "main.mjs"))
	if err != nil {
		return nil, err
	}

	routes, err := afero.ReadFile(p.fs, filepath.Join(dir, "routes.yml"))
	if err != nil {
		return nil, err
	}

	return &Output{ScriptSource: string(script), RouteConfig: routes}, nil
}
