package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/wolfeidau/bundlecompose/internal/parts"
)

const defaultPageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
{{- range .Styles }}
<link rel="stylesheet" href="{{ . }}">
{{- end }}
{{- range .Chunks }}
<link rel="modulepreload" href="{{ . }}">
{{- end }}
<script>window.BUNDLE_MODE = {{ marshal .Mode }};</script>
</head>
<body>
{{- range .Scripts }}
<script type="module" src="{{ . }}"></script>
{{- end }}
</body>
</html>
`

// PageOptions are the options of an html plugin.
type PageOptions struct {
	Filename string   `yaml:"filename"`
	Title    string   `yaml:"title"`
	Template string   `yaml:"template"`
	Chunks   []string `yaml:"chunks"`
}

// PageData is passed to page templates.
type PageData struct {
	Title   string
	Mode    string
	Scripts []string
	Chunks  []string
	Styles  []string
}

// renderPages renders every html plugin. Callers hold b.mu.
func (b *Bundler) renderPages() ([]outputFile, error) {
	var pages []outputFile

	for _, spec := range b.opts.Plugins {
		if spec.Name != parts.PluginHTML {
			continue
		}

		var page PageOptions
		if err := spec.Decode(&page); err != nil {
			return nil, err
		}
		if page.Filename == "" {
			page.Filename = "index.html"
		}

		contents, err := b.renderPage(page)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", page.Filename, err)
		}
		pages = append(pages, outputFile{Path: filepath.Join(b.outDir, page.Filename), Contents: contents})
	}

	return pages, nil
}

func (b *Bundler) renderPage(page PageOptions) ([]byte, error) {
	tmpl, err := loadTemplate(page.Template)
	if err != nil {
		return nil, err
	}

	data := PageData{Title: page.Title, Mode: b.opts.Mode}
	for _, chunk := range page.Chunks {
		scripts, styles, err := b.entryAssets(chunk)
		if err != nil {
			return nil, err
		}
		data.Scripts = append(data.Scripts, scripts[0])
		data.Chunks = append(data.Chunks, scripts[1:]...)
		data.Styles = append(data.Styles, styles...)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// loadTemplate parses the page template at path, or the built in page when path is empty.
func loadTemplate(path string) (*template.Template, error) {
	funcs := template.FuncMap{
		"marshal": marshal,
	}

	if path == "" {
		return template.New("page").Funcs(funcs).Parse(defaultPageTemplate)
	}
	return template.New(filepath.Base(path)).Funcs(funcs).ParseFiles(path)
}

// marshal renders value as a JSON literal for use inside a script element.
func marshal(value any) (template.JS, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("template value is not JSON serializable: %w", err)
	}
	return template.JS(data), nil //nolint:gosec
}
