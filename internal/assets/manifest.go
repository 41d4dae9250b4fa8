package assets

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/minio/crc64nvme"
)

const defaultManifestName = "manifest.json"

// Manifest lists the files written by a build.
type Manifest struct {
	BuildID string          `json:"buildId"`
	Mode    string          `json:"mode"`
	BuiltAt time.Time       `json:"builtAt"`
	Files   []ManifestEntry `json:"files"`
}

type ManifestEntry struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
	CRC64 string `json:"crc64"`
}

// TotalBytes sums the size of every listed file.
func (m *Manifest) TotalBytes() int64 {
	var total int64
	for _, f := range m.Files {
		total += int64(f.Bytes)
	}
	return total
}

// Manifest returns the manifest of the last successful build.
func (b *Bundler) Manifest() (*Manifest, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.manifest == nil {
		return nil, ErrNotBuilt
	}
	return b.manifest, nil
}

// manifestEntries describes files written below the output directory.
func (b *Bundler) manifestEntries(files []outputFile) ([]ManifestEntry, error) {
	entries := make([]ManifestEntry, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(b.outDir, f.Path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ManifestEntry{
			Path:  filepath.ToSlash(rel),
			Bytes: len(f.Contents),
			CRC64: checksum(f.Contents),
		})
	}
	return entries, nil
}

func (b *Bundler) writeManifest(buildID string, entries []ManifestEntry) (*Manifest, error) {
	m := &Manifest{
		BuildID: buildID,
		Mode:    b.opts.Mode,
		BuiltAt: time.Now().UTC(),
		Files:   entries,
	}
	slices.SortFunc(m.Files, func(a, b ManifestEntry) int { return strings.Compare(a.Path, b.Path) })

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	name := cond(b.opts.Output.Manifest != "", b.opts.Output.Manifest, defaultManifestName)
	if err := writeFile(outputFile{Path: filepath.Join(b.outDir, name), Contents: data}); err != nil {
		return nil, err
	}
	return m, nil
}

// checksum is the hex CRC64-NVME of data.
func checksum(data []byte) string {
	h := crc64nvme.New()
	h.Write(data)
	return strconv.FormatUint(h.Sum64(), 16)
}
