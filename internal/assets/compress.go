package assets

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/bundlecompose/internal/parts"
)

// CompressOptions are the options of a compress plugin.
type CompressOptions struct {
	Algorithms []string `yaml:"algorithms"`
	Threshold  int      `yaml:"threshold"`
}

var compressibleExts = []string{".js", ".css", ".html", ".svg", ".json", ".map", ".txt"}

// compress writes precompressed siblings of files at or above the threshold and returns them.
func (b *Bundler) compress(ctx context.Context, files []outputFile) ([]outputFile, error) {
	spec, ok := b.opts.Plugin(parts.PluginCompress)
	if !ok {
		return nil, nil
	}

	var opts CompressOptions
	if err := spec.Decode(&opts); err != nil {
		return nil, err
	}
	if len(opts.Algorithms) == 0 {
		opts.Algorithms = []string{"gzip"}
	}

	var out []outputFile
	for _, f := range files {
		if len(f.Contents) < opts.Threshold || !slices.Contains(compressibleExts, filepath.Ext(f.Path)) {
			continue
		}

		for _, algorithm := range opts.Algorithms {
			compressed, ext, err := compressBytes(algorithm, f.Contents)
			if err != nil {
				return nil, fmt.Errorf("failed to compress %s: %w", f.Path, err)
			}
			cf := outputFile{Path: f.Path + ext, Contents: compressed}
			if err := writeFile(cf); err != nil {
				return nil, err
			}
			out = append(out, cf)
		}
	}

	zerolog.Ctx(ctx).Info().Int("files", len(out)).Strs("algorithms", opts.Algorithms).Msg("Compressed outputs")
	return out, nil
}

func compressBytes(algorithm string, data []byte) ([]byte, string, error) {
	switch algorithm {
	case "gzip":
		buf := new(bytes.Buffer)
		w, err := gzip.NewWriterLevel(buf, gzip.BestCompression)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(data); err != nil {
			return nil, "", err
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ".gz", nil
	case "zstd":
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, "", err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), ".zst", nil
	}
	return nil, "", fmt.Errorf("%w: unknown compression algorithm %q", ErrInvalidConfig, algorithm)
}
