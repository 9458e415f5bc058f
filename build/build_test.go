package build_test

import (
	"testing"

	"github.com/edgerun/edgerun/build"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevPipelineReadsProjectFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/main.mjs", []byte("export const handlers = {};"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/routes.yml", []byte("name: demo\nroutes: {}\n"), 0o644))

	pipeline := build.NewDevPipeline(fs)
	out, err := pipeline.Build("/proj")
	require.NoError(t, err)

	assert.Equal(t, "export const handlers = {};", out.ScriptSource)
	assert.Contains(t, string(out.RouteConfig), "demo")
}

func TestDevPipelineMissingFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	pipeline := build.NewDevPipeline(fs)

	_, err := pipeline.Build("/missing")
	assert.Error(t, err)
}
