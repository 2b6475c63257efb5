package templates_test

import (
	"context"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/email/templates"
)

func TestRegistry_Wrap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := templates.NewRegistry()
	reg.Register("bare", templates.Bare)
	reg.Register("framed", func(data templates.LayoutData) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, "<div class=\"frame\">"+data.Body+"</div>")
			return err
		})
	})

	t.Run("default layout escapes title keeps body", func(t *testing.T) {
		t.Parallel()
		out, err := reg.Wrap(ctx, "", templates.LayoutData{
			Title:    "Tom & Jerry <3",
			Language: "de",
			Body:     "<p>Hello ##name##</p>",
		})
		require.NoError(t, err)
		assert.Contains(t, out, `<html lang="de">`)
		assert.Contains(t, out, "<title>Tom &amp; Jerry &lt;3</title>")
		assert.Contains(t, out, "<body><p>Hello ##name##</p></body>")
	})

	t.Run("custom layouts", func(t *testing.T) {
		t.Parallel()
		out, err := reg.Wrap(ctx, "framed", templates.LayoutData{Body: "<b>x</b>"})
		require.NoError(t, err)
		assert.Equal(t, `<div class="frame"><b>x</b></div>`, out)

		out, err = reg.Wrap(ctx, "bare", templates.LayoutData{Body: "<b>x</b>"})
		require.NoError(t, err)
		assert.Equal(t, "<b>x</b>", out)
	})

	t.Run("unknown layout", func(t *testing.T) {
		t.Parallel()
		_, err := reg.Wrap(ctx, "missing", templates.LayoutData{})
		assert.ErrorIs(t, err, templates.ErrLayoutNotFound)
		assert.False(t, reg.Has("missing"))
		assert.True(t, reg.Has(templates.DefaultLayout))
	})
}
