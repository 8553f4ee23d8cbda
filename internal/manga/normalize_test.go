package manga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/pkg/models"
)

func TestNormalize_Defaults(t *testing.T) {
	t.Parallel()

	in, err := Normalize(Fields{"title": "  Berserk  "})
	require.NoError(t, err)

	assert.Equal(t, "Berserk", in.Title)
	assert.Equal(t, DefaultLanguage, in.Language)
	assert.Equal(t, PlaceholderCover, in.CoverImageURL)
	assert.Empty(t, in.Volume)
	assert.False(t, in.IsRead)
	assert.False(t, in.IsDuplicate)
	assert.False(t, in.WantToBuy)
}

func TestNormalize_TitleRequired(t *testing.T) {
	t.Parallel()

	for _, f := range []Fields{{}, {"title": ""}, {"title": "   "}, {"title": nil}} {
		_, err := Normalize(f)
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Title is required", err.Error())

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "title", ve.Errors[0].Field)
	}
}

func TestNormalize_Aliases(t *testing.T) {
	t.Parallel()

	in, err := Normalize(Fields{
		"Titel":   "Naruto",
		"band":    float64(3),
		"Autor":   "Masashi Kishimoto",
		"verlag":  "Carlsen",
		"sprache": "Englisch",
		"read":    "ja",
		"double":  1,
		"new_buy": "false",
	})
	require.NoError(t, err)

	assert.Equal(t, "Naruto", in.Title)
	assert.Equal(t, "3", in.Volume)
	assert.Equal(t, "Masashi Kishimoto", in.Author)
	assert.Equal(t, "Carlsen", in.Publisher)
	assert.Equal(t, "Englisch", in.Language)
	assert.True(t, in.IsRead)
	assert.True(t, in.IsDuplicate)
	assert.False(t, in.WantToBuy)
}

func TestNormalize_ExactKeyWins(t *testing.T) {
	t.Parallel()

	in, err := Normalize(Fields{"title": "exact", "TITLE": "folded"})
	require.NoError(t, err)
	assert.Equal(t, "exact", in.Title)
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	in, err := Normalize(Fields{
		"title":         "Akira",
		"language":      "Japanisch",
		"coverImageUrl": "https://example.com/a.jpg",
		"isRead":        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Japanisch", in.Language)
	assert.Equal(t, "https://example.com/a.jpg", in.CoverImageURL)
	assert.True(t, in.IsRead)
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{0, false},
		{1, true},
		{int64(2), true},
		{float64(0), false},
		{float64(0.5), true},
		{"", false},
		{"0", false},
		{"false", false},
		{"FALSE", false},
		{"No", false},
		{"nein", false},
		{" off ", false},
		{"n", false},
		{"true", true},
		{"TRUE", true},
		{"x", true},
		{"ja", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truthy(tt.in), "Truthy(%#v)", tt.in)
	}
}

func TestStringify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "abc", Stringify("  abc "))
	assert.Equal(t, "12", Stringify(float64(12)))
	assert.Equal(t, "1.5", Stringify(1.5))
	assert.Equal(t, "7", Stringify(7))
	assert.Equal(t, "true", Stringify(true))
}

func TestValidatePatch(t *testing.T) {
	t.Parallel()

	blank := "  "
	title := "One Piece"

	require.ErrorIs(t, ValidatePatch(models.MangaPatch{Title: &blank}), ErrValidation)
	require.NoError(t, ValidatePatch(models.MangaPatch{Title: &title}))
	require.NoError(t, ValidatePatch(models.MangaPatch{}))
}
