package assets

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/bundlecompose/internal/compose"
	"github.com/wolfeidau/bundlecompose/internal/parts"
)

// Options is the typed view of an effective configuration.
type Options struct {
	Context      string            `yaml:"context"`
	Mode         string            `yaml:"mode"`
	Devtool      string            `yaml:"devtool"`
	Entry        map[string]string `yaml:"entry"`
	Output       Output            `yaml:"output"`
	Module       Module            `yaml:"module"`
	Plugins      []PluginSpec      `yaml:"plugins"`
	DevServer    DevServer         `yaml:"devServer"`
	Target       []string          `yaml:"target"`
	Define       map[string]string `yaml:"define"`
	External     []string          `yaml:"externals"`
	Optimization Optimization      `yaml:"optimization"`
}

type Output struct {
	// Output directory for built files
	Path string `yaml:"path"`
	// Entry file name template (e.g., "js/[name].js")
	Filename string `yaml:"filename"`
	// Asset file name template for the file loader (e.g., "assets/[name]-[hash]")
	AssetFilename string `yaml:"assetFilename"`
	// Public URL prefix for assets
	PublicPath string `yaml:"publicPath"`
	// Manifest file name, relative to Path
	Manifest string `yaml:"manifest"`
}

type Module struct {
	Rules []Rule `yaml:"rules"`
}

// Rule matches imported files by regular expression and names the loader handling them.
type Rule struct {
	Test    string         `yaml:"test"`
	Loader  string         `yaml:"loader"`
	Use     []any          `yaml:"use"`
	Options map[string]any `yaml:"options"`
}

// PluginSpec names a plugin and carries its untyped options.
type PluginSpec struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options"`
}

type DevServer struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	Static             string   `yaml:"static"`
	HistoryAPIFallback bool     `yaml:"historyApiFallback"`
	CORS               []string `yaml:"cors"`
}

type Optimization struct {
	Minimize bool `yaml:"minimize"`
}

// Decode converts an effective configuration into Options. This is where shape errors in
// composed configuration surface.
func Decode(cfg compose.Config) (Options, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return Options{}, fmt.Errorf("failed to encode config: %w", err)
	}

	var opts Options
	if err := node.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if len(opts.Entry) == 0 {
		return Options{}, ErrNoEntryPoints
	}
	if opts.Output.Path == "" {
		return Options{}, fmt.Errorf("%w: output.path is required", ErrInvalidConfig)
	}

	return opts, nil
}

// Plugin returns the first plugin named name.
func (o Options) Plugin(name string) (PluginSpec, bool) {
	for _, p := range o.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return PluginSpec{}, false
}

// Decode unmarshals the plugin options into v.
func (p PluginSpec) Decode(v any) error {
	var node yaml.Node
	if err := node.Encode(p.Options); err != nil {
		return err
	}
	if err := node.Decode(v); err != nil {
		return fmt.Errorf("%w: plugin %s: %w", ErrInvalidConfig, p.Name, err)
	}
	return nil
}

// BuildOptions maps Options onto esbuild. Output is kept in memory; the Bundler writes it.
func (o Options) BuildOptions() (api.BuildOptions, error) {
	loaders, err := o.loaders()
	if err != nil {
		return api.BuildOptions{}, err
	}

	target, engines, err := parseTarget(o.Target)
	if err != nil {
		return api.BuildOptions{}, err
	}

	define := map[string]string{}
	if o.Mode != "" {
		define["process.env.NODE_ENV"] = fmt.Sprintf("%q", o.Mode)
	}
	maps.Copy(define, o.Define)

	opts := api.BuildOptions{
		EntryPointsAdvanced: o.entryPoints(),
		Bundle:              true,
		Splitting:           true,
		Write:               false,
		Metafile:            true,
		Outdir:              o.Output.Path,
		EntryNames:          strings.TrimSuffix(cond(o.Output.Filename != "", o.Output.Filename, "[name].js"), ".js"),
		AssetNames:          o.Output.AssetFilename,
		PublicPath:          o.Output.PublicPath,
		Format:              api.FormatESModule,
		Loader:              loaders,
		Define:              define,
		External:            o.External,
		Target:              target,
		Engines:             engines,
		MinifyWhitespace:    o.Optimization.Minimize,
		MinifyIdentifiers:   o.Optimization.Minimize,
		MinifySyntax:        o.Optimization.Minimize,
		TreeShaking:         api.TreeShakingTrue,
		Sourcemap:           sourceMap(o.Devtool),
		LogLevel:            api.LogLevelSilent,
	}

	if spec, ok := o.Plugin(parts.PluginImportGlob); ok {
		plugin, err := newImportGlobPlugin(spec)
		if err != nil {
			return api.BuildOptions{}, err
		}
		opts.Plugins = append(opts.Plugins, plugin)
	}

	return opts, nil
}

func (o Options) entryPoints() []api.EntryPoint {
	names := slices.Sorted(maps.Keys(o.Entry))
	entries := make([]api.EntryPoint, 0, len(names))
	for _, name := range names {
		entries = append(entries, api.EntryPoint{InputPath: o.Entry[name], OutputPath: name})
	}
	return entries
}

func (o Options) loaders() (map[string]api.Loader, error) {
	out := map[string]api.Loader{}
	for _, rule := range o.Module.Rules {
		loader, ok := loaderNames[rule.Loader]
		if !ok {
			return nil, fmt.Errorf("%w: rule %q uses loader %q", ErrUnknownLoader, rule.Test, rule.Loader)
		}

		exts, err := extensions(rule.Test)
		if err != nil {
			return nil, err
		}
		for _, ext := range exts {
			out[ext] = loader
		}
	}
	return out, nil
}

var loaderNames = map[string]api.Loader{
	"js":      api.LoaderJS,
	"jsx":     api.LoaderJSX,
	"ts":      api.LoaderTS,
	"tsx":     api.LoaderTSX,
	"json":    api.LoaderJSON,
	"css":     api.LoaderCSS,
	"text":    api.LoaderText,
	"file":    api.LoaderFile,
	"copy":    api.LoaderCopy,
	"dataurl": api.LoaderDataURL,
	"base64":  api.LoaderBase64,
	"binary":  api.LoaderBinary,
	"empty":   api.LoaderEmpty,
}

func sourceMap(devtool string) api.SourceMap {
	switch devtool {
	case "":
		return api.SourceMapNone
	case "inline-source-map":
		return api.SourceMapInline
	case "hidden-source-map":
		return api.SourceMapExternal
	default:
		return api.SourceMapLinked
	}
}

var (
	esTargets = map[string]api.Target{
		"es2015": api.ES2015,
		"es2016": api.ES2016,
		"es2017": api.ES2017,
		"es2018": api.ES2018,
		"es2019": api.ES2019,
		"es2020": api.ES2020,
		"es2021": api.ES2021,
		"es2022": api.ES2022,
		"esnext": api.ESNext,
	}
	engineNames = map[string]api.EngineName{
		"chrome":  api.EngineChrome,
		"edge":    api.EngineEdge,
		"firefox": api.EngineFirefox,
		"ios":     api.EngineIOS,
		"node":    api.EngineNode,
		"opera":   api.EngineOpera,
		"safari":  api.EngineSafari,
	}
)

// parseTarget splits targets such as "es2017" or "chrome100" into an ECMAScript level and
// engine versions.
func parseTarget(targets []string) (api.Target, []api.Engine, error) {
	target := api.DefaultTarget
	var engines []api.Engine

	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if es, ok := esTargets[t]; ok {
			target = es
			continue
		}

		idx := strings.IndexFunc(t, func(r rune) bool { return r >= '0' && r <= '9' })
		if idx <= 0 {
			return 0, nil, fmt.Errorf("%w: unknown target %q", ErrInvalidConfig, t)
		}
		name, ok := engineNames[t[:idx]]
		if !ok {
			return 0, nil, fmt.Errorf("%w: unknown engine %q", ErrInvalidConfig, t[:idx])
		}
		engines = append(engines, api.Engine{Name: name, Version: t[idx:]})
	}

	return target, engines, nil
}

// outputDir returns the absolute output directory.
func (o Options) outputDir() (string, error) {
	return filepath.Abs(o.Output.Path)
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
