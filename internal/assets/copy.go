package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/minio/crc64nvme"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/bundlecompose/internal/parts"
)

// CopyOptions are the options of a copy plugin.
type CopyOptions struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// copyStatic copies every copy plugin source tree below the output directory and returns
// the copied files. A missing source directory is skipped.
func (b *Bundler) copyStatic(ctx context.Context) ([]ManifestEntry, error) {
	var copied []ManifestEntry

	for _, spec := range b.opts.Plugins {
		if spec.Name != parts.PluginCopy {
			continue
		}

		var opts CopyOptions
		if err := spec.Decode(&opts); err != nil {
			return nil, err
		}

		if _, err := os.Stat(opts.From); errors.Is(err, fs.ErrNotExist) {
			zerolog.Ctx(ctx).Debug().Str("from", opts.From).Msg("Nothing to copy")
			continue
		}

		dst := filepath.Join(b.outDir, opts.To)
		files, err := copyTree(opts.From, dst)
		if err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", opts.From, err)
		}
		for _, f := range files {
			rel, err := filepath.Rel(b.outDir, f.Path)
			if err != nil {
				return nil, err
			}
			f.Path = filepath.ToSlash(rel)
			copied = append(copied, f)
		}
		zerolog.Ctx(ctx).Info().Str("from", opts.From).Str("to", dst).Int("files", len(files)).Msg("Copied static files")
	}
	return copied, nil
}

// copyTree copies src to dst. The returned entries carry absolute destination paths.
func copyTree(src, dst string) ([]ManifestEntry, error) {
	var copied []ManifestEntry
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		entry, err := copyFile(path, target)
		if err != nil {
			return err
		}
		copied = append(copied, entry)
		return nil
	})
	return copied, err
}

func copyFile(src, dst string) (ManifestEntry, error) {
	in, err := os.Open(src)
	if err != nil {
		return ManifestEntry{}, err
	}
	defer in.Close()

	// #nosec G302 G304 - copying public static files
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return ManifestEntry{}, err
	}

	h := crc64nvme.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if err != nil {
		_ = out.Close()
		return ManifestEntry{}, err
	}
	if err := out.Close(); err != nil {
		return ManifestEntry{}, err
	}

	return ManifestEntry{
		Path:  dst,
		Bytes: int(n),
		CRC64: strconv.FormatUint(h.Sum64(), 16),
	}, nil
}
