package assets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadTemplate_DefaultPage(t *testing.T) {
	tmpl, err := loadTemplate("")
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	require.NoError(t, tmpl.Execute(buf, PageData{
		Title:   "demo",
		Mode:    "production",
		Scripts: []string{"js/index.js"},
		Chunks:  []string{"js/chunk-ABC.js"},
		Styles:  []string{"css/index.css"},
	}))

	page := buf.String()
	require.Contains(t, page, `<title>demo</title>`)
	require.Contains(t, page, `window.BUNDLE_MODE = "production";`)
	require.Contains(t, page, `<link rel="stylesheet" href="css/index.css">`)
	require.Contains(t, page, `<link rel="modulepreload" href="js/chunk-ABC.js">`)
	require.Contains(t, page, `<script type="module" src="js/index.js"></script>`)
}

func TestMarshal(t *testing.T) {
	js, err := marshal("</script><script>alert(1)")
	require.NoError(t, err)
	require.NotContains(t, string(js), "</script>")

	_, err = marshal(make(chan int))
	require.Error(t, err)
}
