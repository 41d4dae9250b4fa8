// Package parts provides the partial configurations composed into a build. Each part covers
// one concern and is plain data; the assets package interprets rule loaders and plugin names.
package parts

import (
	"github.com/wolfeidau/bundlecompose/internal/compose"
	"github.com/wolfeidau/bundlecompose/internal/config"
)

// Plugin names understood by the bundler adapter.
const (
	PluginHTML       = "html"
	PluginCSSExtract = "css-extract"
	PluginImportGlob = "import-glob"
	PluginCopy       = "copy"
	PluginCompress   = "compress"
)

// Rule builds a module rule matching test and handled by loader.
func Rule(test, loader string) compose.Config {
	return compose.Config{"test": test, "loader": loader}
}

// Plugin builds a plugin descriptor.
func Plugin(name string, options compose.Config) compose.Config {
	return compose.Config{"name": name, "options": options}
}

func rules(r ...compose.Config) compose.Config {
	seq := make([]any, len(r))
	for i := range r {
		seq[i] = r[i]
	}
	return compose.Config{"rules": seq}
}

// Common holds the entry, output and page generation shared by every environment.
func Common(p config.Params) compose.Config {
	mode, devtool := config.EnvDevelopment, "source-map"
	if p.Production() {
		mode, devtool = config.EnvProduction, ""
	}

	return compose.Config{
		"context": p.Context,
		"mode":    mode,
		"devtool": devtool,
		"entry": compose.Config{
			"index": p.EntryPath(),
		},
		"output": compose.Config{
			"path":       p.OutputDir,
			"filename":   "js/[name].js",
			"publicPath": p.PublicPath,
			"manifest":   p.ManifestName,
		},
		"module": rules(Rule(`\.js$`, "js")),
		"plugins": []any{
			Plugin(PluginHTML, compose.Config{
				"filename": "index.html",
				"chunks":   []any{"index"},
				"template": p.TemplatePath(),
			}),
		},
	}
}

// Templates lets scripts import page templates as text.
func Templates() compose.Config {
	return compose.Config{
		"module": rules(Rule(`\.(tmpl|gohtml)$`, "text")),
	}
}

// ImportGlob expands import specifiers containing glob patterns into one import per match.
func ImportGlob() compose.Config {
	return compose.Config{
		"plugins": []any{
			Plugin(PluginImportGlob, compose.Config{"filter": `[*?\[]`}),
		},
	}
}

// DevServer configures the development server.
func DevServer(p config.Params) compose.Config {
	return compose.Config{
		"devServer": compose.Config{
			"host":               p.Host,
			"port":               p.Port,
			"static":             p.OutputDir,
			"historyApiFallback": true,
			"cors":               []any{"*"},
		},
	}
}

// Media copies images and fonts next to the bundle and copies the static directory verbatim.
func Media(p config.Params) compose.Config {
	return compose.Config{
		"output": compose.Config{
			"assetFilename": "assets/[name]-[hash]",
		},
		"module": rules(
			Rule(`\.(png|jpe?g|gif|svg|webp)$`, "file"),
			Rule(`\.(woff2?|ttf|eot|otf)$`, "file"),
		),
		"plugins": []any{
			Plugin(PluginCopy, compose.Config{
				"from": p.Context + "/static",
				"to":   "static",
			}),
		},
	}
}

// Transpile sets the syntax target and enables JSX.
func Transpile() compose.Config {
	return compose.Config{
		"target": []any{"es2017"},
		"module": rules(Rule(`\.jsx$`, "jsx")),
	}
}

// Compress writes precompressed siblings for outputs above the threshold.
func Compress() compose.Config {
	return compose.Config{
		"plugins": []any{
			Plugin(PluginCompress, compose.Config{
				"algorithms": []any{"gzip", "zstd"},
				"threshold":  1024,
			}),
		},
	}
}
