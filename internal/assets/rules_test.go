package assets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtensions(t *testing.T) {
	tests := []struct {
		name     string
		test     string
		expected []string
		wantErr  bool
	}{
		{name: "single", test: `\.css$`, expected: []string{".css"}},
		{name: "unanchored", test: `\.js`, expected: []string{".js"}},
		{name: "alternation", test: `\.(tmpl|gohtml)$`, expected: []string{".gohtml", ".tmpl"}},
		{name: "optional character", test: `\.(png|jpe?g|gif)$`, expected: []string{".gif", ".jpeg", ".jpg", ".png"}},
		{name: "optional suffix", test: `\.(woff2?|ttf)$`, expected: []string{".ttf", ".woff", ".woff2"}},
		{name: "character class", test: `\.[jt]sx$`, expected: []string{".jsx", ".tsx"}},
		{name: "unbounded", test: `\.\w+$`, wantErr: true},
		{name: "not an extension", test: `index`, wantErr: true},
		{name: "bad regex", test: `\.(css`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exts, err := extensions(tt.test)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, exts)
		})
	}
}
