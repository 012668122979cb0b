package validators

import (
	"math"
	"testing"

	"ckan-go/internal/types"

	"github.com/stretchr/testify/require"
)

func TestValidate_chain(t *testing.T) {
	require := require.New(t)

	schema := types.Schema{
		"name":      {MustGet("not_empty"), MustGet("name_validator")},
		"audio_url": {MustGet("ignore_empty"), MustGet("unicode_safe")},
		"position":  {MustGet("ignore_missing"), MustGet("natural_number_validator")},
		"title":     {MustGet("ignore_missing"), MustGet("unicode_safe")},
	}

	out, errs := Validate(types.DataDict{
		"name":      "road-traffic",
		"audio_url": "",
		"position":  "3",
		"extra":     42,
	}, schema)
	require.Nil(errs)
	require.Equal(types.DataDict{"name": "road-traffic", "position": 3, "extra": 42}, out)
}

func TestValidate_errors(t *testing.T) {
	require := require.New(t)

	schema := types.Schema{
		"name":   {MustGet("not_empty"), MustGet("name_validator")},
		"rating": {MustGet("not_empty"), MustGet("rating_value")},
		"url":    {MustGet("url_validator")},
	}

	_, errs := Validate(types.DataDict{"rating": 6, "url": "not a url"}, schema)
	require.Equal([]string{"Missing value"}, errs["name"])
	require.Equal([]string{"Rating must be between 1 and 5."}, errs["rating"])
	require.Equal([]string{"Please provide a valid URL"}, errs["url"])

	_, errs = Validate(types.DataDict{"name": "Bad Name!"}, types.Schema{"name": {MustGet("name_validator")}})
	require.Len(errs["name"], 1)
}

func TestIntValidator(t *testing.T) {
	require := require.New(t)

	for in, want := range map[any]any{"12": 12, 7: 7, 3.0: 3, "  ": nil} {
		got, err := IntValidator(in)
		require.NoError(err)
		require.Equal(want, got)
	}

	_, err := IntValidator("1.5")
	require.Error(err)
	_, err = NaturalNumberValidator(-1)
	require.Error(err)
}

func TestRatingValue(t *testing.T) {
	require := require.New(t)

	for _, ok := range []any{1, 1.0, "5", 3.5} {
		_, err := RatingValue(ok)
		require.NoError(err)
	}
	for _, bad := range []any{0.99, 5.01, "x", nil, "NaN", math.NaN(), math.Inf(1), "-Inf"} {
		_, err := RatingValue(bad)
		var invalid *types.Invalid
		require.ErrorAs(err, &invalid)
	}
}

func TestUnicodeSafe(t *testing.T) {
	require := require.New(t)

	got, _ := UnicodeSafe([]byte("caf\xe9"))
	require.Equal("café", got)
	got, _ = UnicodeSafe([]byte("café"))
	require.Equal("café", got)
	got, _ = UnicodeSafe(map[string]any{"b": 1, "a": true})
	require.Equal(`{"a":true,"b":1}`, got)
	got, _ = UnicodeSafe(12)
	require.Equal("12", got)
}

func TestBooleanValidator(t *testing.T) {
	require := require.New(t)

	got, _ := BooleanValidator("yes")
	require.Equal(true, got)
	got, _ = BooleanValidator("")
	require.Equal(false, got)
	got, _ = BooleanValidator(true)
	require.Equal(true, got)
}
