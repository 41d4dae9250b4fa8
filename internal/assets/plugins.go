package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/bundlecompose/internal/parts"
)

const (
	importGlobNamespace = "import-glob"
	defaultGlobFilter   = `[*?\[]`
)

// globImport is carried from resolve to load for a glob specifier.
type globImport struct {
	ResolveDir string
	Importer   string
}

// newImportGlobPlugin expands imports such as "./components/*.js" or "./**/widget.js" into
// one import per matching file, in lexical order.
func newImportGlobPlugin(spec PluginSpec) (api.Plugin, error) {
	var options struct {
		Filter string `yaml:"filter"`
	}
	if err := spec.Decode(&options); err != nil {
		return api.Plugin{}, err
	}
	if options.Filter == "" {
		options.Filter = defaultGlobFilter
	}
	if _, err := regexp.Compile(options.Filter); err != nil {
		return api.Plugin{}, fmt.Errorf("%w: import-glob filter: %w", ErrInvalidConfig, err)
	}

	return api.Plugin{
		Name: parts.PluginImportGlob,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: options.Filter},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:       filepath.Join(args.ResolveDir, args.Path),
						Namespace:  importGlobNamespace,
						PluginData: globImport{ResolveDir: args.ResolveDir, Importer: args.Importer},
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: importGlobNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					imp, _ := args.PluginData.(globImport)

					contents, watchDirs, err := globModule(args.Path, imp.Importer)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					resolveDir := imp.ResolveDir
					if resolveDir == "" {
						resolveDir = globBase(args.Path)
					}
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: resolveDir,
						WatchDirs:  watchDirs,
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}, nil
}

// globModule generates a module importing every file matching pattern except the importer,
// and returns the directories whose listings decide the matches.
func globModule(pattern, importer string) (string, []string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return "", nil, fmt.Errorf("bad import pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", nil, fmt.Errorf("bad import pattern %q: %w", pattern, err)
	}
	slices.Sort(matches)

	log.Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("Expanded glob import")

	var sb strings.Builder
	for _, m := range matches {
		if importer != "" && filepath.Clean(m) == filepath.Clean(importer) {
			continue
		}
		fmt.Fprintf(&sb, "import %q;\n", filepath.ToSlash(m))
	}

	dirs, err := globWatchDirs(pattern)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), dirs, nil
}

// globBase is the deepest directory of pattern that holds no wildcard.
func globBase(pattern string) string {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	return filepath.FromSlash(base)
}

// globWatchDirs lists the directories a pattern walks. Patterns with a wildcard below the
// base directory depend on every directory beneath it.
func globWatchDirs(pattern string) ([]string, error) {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	base = filepath.FromSlash(base)
	if !strings.Contains(rest, "/") && !strings.Contains(rest, "**") {
		return []string{base}, nil
	}

	if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var dirs []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", base, err)
	}
	return dirs, nil
}
