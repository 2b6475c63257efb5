package tokens_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

func TestBuilder(t *testing.T) {
	t.Parallel()

	t.Run("single and list values", func(t *testing.T) {
		t.Parallel()

		toks := tokens.NewBuilder().
			Set("admin_email", "admin@example.com").
			WithPrefix("member_").
			Set("firstname", "Jane").
			SetList("newsletter", "Weekly", "Product news").
			Build()

		assert.Equal(t, 3, toks.Len())
		assert.Equal(t, "admin@example.com", toks.Lookup("admin_email"))
		assert.Equal(t, "Jane", toks.Lookup("member_firstname"))
		assert.Equal(t, "Weekly\nProduct news", toks.Lookup("member_newsletter"))

		v, ok := toks.Get("member_newsletter")
		require.True(t, ok)
		assert.True(t, v.IsList())
		assert.Equal(t, []string{"Weekly", "Product news"}, v.List())
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		toks := tokens.Empty()
		v, ok := toks.Get("nope")
		assert.False(t, ok)
		assert.True(t, v.IsEmpty())
		assert.Equal(t, "", toks.Lookup("nope"))
		assert.False(t, toks.Has("nope"))
	})

	t.Run("built store is frozen", func(t *testing.T) {
		t.Parallel()

		b := tokens.NewBuilder().Set("a", "1")
		first := b.Build()
		b.Set("a", "2").Set("b", "3")

		assert.Equal(t, "1", first.Lookup("a"))
		assert.False(t, first.Has("b"))
		assert.Equal(t, "2", b.Build().Lookup("a"))
	})

	t.Run("list values are copied", func(t *testing.T) {
		t.Parallel()

		items := []string{"x", "y"}
		toks := tokens.NewBuilder().SetList("l", items...).Build()
		items[0] = "changed"

		assert.Equal(t, "x\ny", toks.Lookup("l"))
	})

	t.Run("empty name ignored", func(t *testing.T) {
		t.Parallel()

		toks := tokens.NewBuilder().Set("", "x").Build()
		assert.Equal(t, 0, toks.Len())
	})
}

func TestFromMapAndMerge(t *testing.T) {
	t.Parallel()

	base := tokens.FromMap(map[string]string{"name": "Jane", "city": "Bern"})
	assert.Equal(t, []string{"city", "name"}, base.Names())

	merged := tokens.NewBuilder().WithPrefix("form_").Merge(base).Build()
	assert.Equal(t, map[string]string{"form_name": "Jane", "form_city": "Bern"}, merged.Map())
}

func TestValueList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{}, tokens.String("").List())
	assert.Equal(t, []string{"a"}, tokens.String("a").List())
	assert.Equal(t, "", tokens.List().String())
}
