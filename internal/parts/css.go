package parts

import "github.com/wolfeidau/bundlecompose/internal/compose"

// CSSExtract pulls stylesheets out of the script bundle into css/[name].css. When optimize
// is set the post-processors prefix, pack media queries and minify.
func CSSExtract(optimize bool) compose.Config {
	postcss := []any{}
	if optimize {
		postcss = append(postcss,
			compose.Config{"name": "autoprefixer"},
			compose.Config{"name": "mqpacker", "options": compose.Config{"sort": true}},
			compose.Config{"name": "cssnano", "options": compose.Config{
				"reduceIdents":    false,
				"discardComments": compose.Config{"removeAll": true},
			}},
		)
	}

	use := func(extra ...any) []any {
		chain := []any{
			"css-loader",
			compose.Config{"loader": "postcss-loader", "options": compose.Config{"plugins": postcss}},
		}
		return append(chain, extra...)
	}

	extract := func(test string, chain []any) compose.Config {
		r := Rule(test, "css")
		r["use"] = chain
		r["options"] = compose.Config{
			"publicPath": "../",
			"fallback":   "style-loader",
		}
		return r
	}

	cfg := compose.Config{
		"module": rules(
			extract(`\.css$`, use()),
			extract(`\.scss$`, use("sass-loader")),
		),
		"plugins": []any{
			Plugin(PluginCSSExtract, compose.Config{"filename": "./css/[name].css"}),
		},
	}
	if optimize {
		cfg["optimization"] = compose.Config{"minimize": true}
	}
	return cfg
}
