package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifycenter/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("subject", "Hello"),
			validator.ValidEmail("from", "admin@example.com"),
			validator.InRange("priority", 3, 1, 5),
			validator.OneOf("mode", "textOnly", "textOnly", "textAndHtml"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("subject", "  "),
			validator.ValidEmail("from", "not-an-email"),
			validator.InRange("priority", 9, 1, 5),
			validator.RequiredSlice[string]("to", nil),
		)
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))

		errs := validator.ExtractValidationErrors(err)
		assert.Equal(t, []string{"subject", "from", "priority", "to"}, errs.Fields())
		assert.True(t, errs.Has("priority"))
		assert.Contains(t, err.Error(), "priority: must be between 1 and 5")
	})

	t.Run("when skips rule", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(validator.When(false, validator.Required("reply_to", "")))
		assert.NoError(t, err)
	})
}

func TestIsEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.org", true},
		{"", false},
		{"user", false},
		{"user@localhost", false},
		{"user@.example.com", false},
		{"user@example..com", false},
		{"@example.com", false},
		{"Jane <jane@example.com>", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, validator.IsEmail(tt.value))
		})
	}
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	name, addr, ok := validator.ParseAddress("Jane Doe <jane@example.com>")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", name)
	assert.Equal(t, "jane@example.com", addr)

	name, addr, ok = validator.ParseAddress(" bob@example.com ")
	require.True(t, ok)
	assert.Empty(t, name)
	assert.Equal(t, "bob@example.com", addr)

	_, _, ok = validator.ParseAddress("Broken <nope>")
	assert.False(t, ok)
}
