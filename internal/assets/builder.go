package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/bundlecompose/internal/parts"
	"github.com/wolfeidau/bundlecompose/internal/telemetry"
)

var tracer = otel.Tracer("github.com/wolfeidau/bundlecompose/internal/assets")

// outputFile is a file ready to be written below the output directory.
type outputFile struct {
	Path     string
	Contents []byte
}

// Build runs esbuild with the configured settings and writes the outputs
func (b *Bundler) Build(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opts, err := b.buildOptions()
	if err != nil {
		return err
	}

	run := b.startBuild(ctx)
	zerolog.Ctx(run.ctx).Info().Strs("entrypoints", slices.Sorted(maps.Values(b.opts.Entry))).Msg("Building assets")

	err = b.emit(run, api.Build(opts))
	run.finish(err)
	return err
}

func (b *Bundler) buildOptions() (api.BuildOptions, error) {
	opts, err := b.opts.BuildOptions()
	if err != nil {
		return api.BuildOptions{}, err
	}
	opts.AbsWorkingDir = b.workDir
	return opts, nil
}

// buildRun is one build, from the start of bundling until its outputs are written.
type buildRun struct {
	ctx    context.Context
	id     string
	finish func(err error)
}

// startBuild opens the span and starts the clock for a build. finish records the outcome.
func (b *Bundler) startBuild(ctx context.Context) *buildRun {
	started := time.Now()
	buildID := uuid.Must(uuid.NewV7()).String()

	ctx, span := tracer.Start(ctx, "assets.build")
	span.SetAttributes(
		attribute.String("build.id", buildID),
		attribute.String("build.mode", b.opts.Mode),
	)
	logger := log.With().Str("build_id", buildID).Logger()
	ctx = logger.WithContext(ctx)

	metrics := telemetry.GetMetrics()
	return &buildRun{
		ctx: ctx,
		id:  buildID,
		finish: func(err error) {
			attrs := metric.WithAttributes(attribute.String("mode", b.opts.Mode), attribute.Bool("success", err == nil))
			metrics.BuildsTotal.Add(ctx, 1, attrs)
			metrics.BuildDuration.Record(ctx, time.Since(started).Seconds(), attrs)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else if m, mErr := b.Manifest(); mErr == nil {
				span.SetAttributes(attribute.Int("build.files", len(m.Files)))
			}
			span.End()
		},
	}
}

// emit writes a build result. It runs after every build, including watch rebuilds.
func (b *Bundler) emit(run *buildRun, result api.BuildResult) error {
	ctx := run.ctx
	logger := zerolog.Ctx(ctx)

	for _, msg := range result.Warnings {
		logMessage(logger.Warn(), msg).Msg("Build warning")
	}

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			logMessage(logger.Error(), msg).Msg("Build error")
		}
		return ErrBuildFailed
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return fmt.Errorf("failed to parse metafile: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	files, renamed, err := b.placeOutputs(result.OutputFiles)
	if err != nil {
		return err
	}

	b.metadata = &metadata
	b.renamed = renamed

	pages, err := b.renderPages()
	if err != nil {
		return err
	}
	files = append(files, pages...)

	for _, f := range files {
		if err := writeFile(f); err != nil {
			return err
		}
		logger.Info().Str("file", f.Path).Int("bytes", len(f.Contents)).Msg("Built file")
	}

	static, err := b.copyStatic(ctx)
	if err != nil {
		return err
	}

	compressed, err := b.compress(ctx, files)
	if err != nil {
		return err
	}

	entries, err := b.manifestEntries(append(files, compressed...))
	if err != nil {
		return err
	}

	manifest, err := b.writeManifest(run.id, append(entries, static...))
	if err != nil {
		return err
	}
	b.manifest = manifest

	telemetry.GetMetrics().OutputBytes.Add(ctx, manifest.TotalBytes(), metric.WithAttributes(attribute.String("mode", b.opts.Mode)))

	return nil
}

// placeOutputs moves extracted stylesheets to the css-extract filename template.
func (b *Bundler) placeOutputs(outputs []api.OutputFile) ([]outputFile, map[string]string, error) {
	files := make([]outputFile, 0, len(outputs))
	renamed := map[string]string{}

	var extract struct {
		Filename string `yaml:"filename"`
	}
	spec, extracting := b.opts.Plugin(parts.PluginCSSExtract)
	if extracting {
		if err := spec.Decode(&extract); err != nil {
			return nil, nil, err
		}
		extracting = extract.Filename != ""
	}

	for _, out := range outputs {
		path := out.Path
		if extracting {
			if moved, ok := b.extractedPath(out.Path, extract.Filename); ok {
				renamed[out.Path] = moved
				path = moved
			}
		}
		files = append(files, outputFile{Path: path, Contents: out.Contents})
	}

	return files, renamed, nil
}

func (b *Bundler) extractedPath(path, template string) (string, bool) {
	base := filepath.Base(path)

	suffix := ""
	switch {
	case strings.HasSuffix(base, ".css.map"):
		suffix = ".map"
		base = strings.TrimSuffix(base, ".map")
	case strings.HasSuffix(base, ".css"):
	default:
		return "", false
	}

	name := strings.TrimSuffix(base, ".css")
	target := strings.ReplaceAll(template, "[name]", name)
	return filepath.Join(b.outDir, filepath.FromSlash(target)) + suffix, true
}

// LoadScripts returns the ordered list of script paths needed for the named entrypoint
// and the main entrypoint file path, relative to the output directory
func (b *Bundler) LoadScripts(entry string) ([]string, string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	scripts, _, err := b.entryAssets(entry)
	if err != nil {
		return nil, "", err
	}
	return scripts, scripts[0], nil
}

// entryAssets returns the scripts, entry first, and stylesheets of the named entrypoint.
// Callers hold b.mu.
func (b *Bundler) entryAssets(entry string) ([]string, []string, error) {
	if b.metadata == nil {
		return nil, nil, ErrNotBuilt
	}

	input, ok := b.opts.Entry[entry]
	if !ok {
		return nil, nil, fmt.Errorf("entrypoint %q not configured", entry)
	}
	input = b.abs(input)

	scripts := []string{}
	visited := make(map[string]bool)

	// Find the output file for this entrypoint
	for outputPath, info := range b.metadata.Outputs {
		if info.EntryPoint == "" || b.abs(info.EntryPoint) != input || !strings.HasSuffix(outputPath, ".js") {
			continue
		}

		scripts = append(scripts, b.url(outputPath))
		visited[outputPath] = true
		b.addDependencies(info, &scripts, visited)

		var styles []string
		if info.CSSBundle != "" {
			styles = append(styles, b.url(info.CSSBundle))
		}
		return scripts, styles, nil
	}

	return nil, nil, errors.New("entrypoint not found in metadata")
}

func (b *Bundler) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if !visited[imp.Path] {
			visited[imp.Path] = true
			if !strings.HasSuffix(imp.Path, ".js") {
				continue
			}
			*scripts = append(*scripts, b.url(imp.Path))

			if chunkInfo, exists := b.metadata.Outputs[imp.Path]; exists {
				b.addDependencies(chunkInfo, scripts, visited)
			}
		}
	}
}

func (b *Bundler) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(b.workDir, filepath.FromSlash(path))
}

// url converts a metafile path into a slash separated path relative to the output directory,
// following any move made after the build.
func (b *Bundler) url(metaPath string) string {
	path := b.abs(metaPath)
	if moved, ok := b.renamed[path]; ok {
		path = moved
	}
	rel, err := filepath.Rel(b.outDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return b.opts.Output.PublicPath + filepath.ToSlash(rel)
}

func writeFile(f outputFile) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	// #nosec G306 - built web assets are public
	if err := os.WriteFile(f.Path, f.Contents, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return nil
}

func logMessage(ev *zerolog.Event, msg api.Message) *zerolog.Event {
	ev = ev.Str("error", msg.Text)
	if msg.Location != nil {
		ev = ev.Str("file", msg.Location.File).Int("line", msg.Location.Line)
	}
	return ev
}
