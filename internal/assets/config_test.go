package assets

import (
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/bundlecompose/internal/compose"
	"github.com/wolfeidau/bundlecompose/internal/config"
	"github.com/wolfeidau/bundlecompose/internal/parts"
	"github.com/wolfeidau/bundlecompose/internal/preset"
)

func TestDecode(t *testing.T) {
	p := config.Defaults()
	p.Env = config.EnvProduction

	opts, err := Decode(preset.Effective(p))
	require.NoError(t, err)

	require.Equal(t, "production", opts.Mode)
	require.Equal(t, map[string]string{"index": "demo/index.js"}, opts.Entry)
	require.Equal(t, "demo_build", opts.Output.Path)
	require.Equal(t, "js/[name].js", opts.Output.Filename)
	require.True(t, opts.Optimization.Minimize)
	require.Len(t, opts.Module.Rules, 7)
	require.True(t, opts.DevServer.HistoryAPIFallback)
	require.Equal(t, []string{"*"}, opts.DevServer.CORS)

	spec, ok := opts.Plugin(parts.PluginCompress)
	require.True(t, ok)

	var compress CompressOptions
	require.NoError(t, spec.Decode(&compress))
	require.Equal(t, CompressOptions{Algorithms: []string{"gzip", "zstd"}, Threshold: 1024}, compress)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     compose.Config
		errType error
	}{
		{
			name:    "no entry points",
			cfg:     compose.Config{"output": compose.Config{"path": "dist"}},
			errType: ErrNoEntryPoints,
		},
		{
			name:    "missing output path",
			cfg:     compose.Config{"entry": compose.Config{"index": "index.js"}},
			errType: ErrInvalidConfig,
		},
		{
			name: "sequence merged over mapping",
			cfg: compose.Compose(
				compose.Config{"entry": compose.Config{"index": "index.js"}, "output": compose.Config{"path": "dist"}},
				compose.Config{"output": []any{"dist"}},
			),
			errType: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.cfg)
			require.ErrorIs(t, err, tt.errType)
		})
	}
}

func TestBuildOptions(t *testing.T) {
	p := config.Defaults()
	p.Env = config.EnvProduction

	opts, err := Decode(preset.Effective(p))
	require.NoError(t, err)

	bo, err := opts.BuildOptions()
	require.NoError(t, err)

	require.Equal(t, []api.EntryPoint{{InputPath: "demo/index.js", OutputPath: "index"}}, bo.EntryPointsAdvanced)
	require.Equal(t, "demo_build", bo.Outdir)
	require.Equal(t, "js/[name]", bo.EntryNames)
	require.Equal(t, "assets/[name]-[hash]", bo.AssetNames)
	require.False(t, bo.Write)
	require.True(t, bo.Metafile)
	require.True(t, bo.MinifyWhitespace)
	require.True(t, bo.MinifyIdentifiers)
	require.True(t, bo.MinifySyntax)
	require.Equal(t, api.SourceMapNone, bo.Sourcemap)
	require.Equal(t, api.ES2017, bo.Target)
	require.Equal(t, `"production"`, bo.Define["process.env.NODE_ENV"])

	require.Equal(t, api.LoaderJS, bo.Loader[".js"])
	require.Equal(t, api.LoaderJSX, bo.Loader[".jsx"])
	require.Equal(t, api.LoaderText, bo.Loader[".tmpl"])
	require.Equal(t, api.LoaderText, bo.Loader[".gohtml"])
	require.Equal(t, api.LoaderCSS, bo.Loader[".css"])
	require.Equal(t, api.LoaderCSS, bo.Loader[".scss"])
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".woff", ".woff2", ".ttf", ".eot", ".otf"} {
		require.Equal(t, api.LoaderFile, bo.Loader[ext], ext)
	}

	require.Len(t, bo.Plugins, 1)
	require.Equal(t, parts.PluginImportGlob, bo.Plugins[0].Name)
}

func TestBuildOptions_Development(t *testing.T) {
	opts, err := Decode(preset.Effective(config.Defaults()))
	require.NoError(t, err)

	bo, err := opts.BuildOptions()
	require.NoError(t, err)

	require.False(t, bo.MinifyWhitespace)
	require.Equal(t, api.SourceMapLinked, bo.Sourcemap)
	require.Equal(t, `"development"`, bo.Define["process.env.NODE_ENV"])
}

func TestBuildOptions_UnknownLoader(t *testing.T) {
	opts := Options{
		Entry:  map[string]string{"index": "index.js"},
		Output: Output{Path: "dist"},
		Module: Module{Rules: []Rule{{Test: `\.scss$`, Loader: "sass"}}},
	}

	_, err := opts.BuildOptions()
	require.ErrorIs(t, err, ErrUnknownLoader)
}

func TestParseTarget(t *testing.T) {
	target, engines, err := parseTarget([]string{"es2020", "chrome100", "Safari15.4"})
	require.NoError(t, err)
	require.Equal(t, api.ES2020, target)
	require.Equal(t, []api.Engine{
		{Name: api.EngineChrome, Version: "100"},
		{Name: api.EngineSafari, Version: "15.4"},
	}, engines)

	target, engines, err = parseTarget(nil)
	require.NoError(t, err)
	require.Equal(t, api.DefaultTarget, target)
	require.Empty(t, engines)

	_, _, err = parseTarget([]string{"netscape4"})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, _, err = parseTarget([]string{"modern"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
