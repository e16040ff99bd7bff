package http_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-neatbox/framework/http"
)

func TestViewEngine_Render(t *testing.T) {
	engine := gohttp.NewViewEngine("testdata/views", ".html")

	html, err := engine.Render("home", map[string]any{"title": "<Home>"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>&lt;Home&gt;</h1>\n", html)
}

func TestViewEngine_RenderWithLayout(t *testing.T) {
	engine := gohttp.NewViewEngine("testdata/views", ".html")

	html, err := engine.RenderWithLayout("layout", "page", map[string]any{"body": "hi"})
	require.NoError(t, err)
	assert.Contains(t, html, "<main><p>hi</p></main>")
}

func TestViewEngine_MissingTemplate(t *testing.T) {
	engine := gohttp.NewViewEngine("testdata/views", ".html")

	_, err := engine.Render("missing", nil)
	assert.ErrorContains(t, err, "view: template missing")
}
