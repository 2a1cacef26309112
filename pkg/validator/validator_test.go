package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewForm struct {
	Content string `form:"content" validate:"required,max=20"`
	Rating  int    `form:"rating" validate:"gte=1,lte=5"`
}

type plainForm struct {
	Name  string  `validate:"required,min=2"`
	Power float64 `validate:"gt=0"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(reviewForm{Content: "great car", Rating: 5}))
}

func TestValidate_UsesFormTagNames(t *testing.T) {
	err := Validate(reviewForm{Rating: 3})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, map[string]string{"content": "is required"}, valErr.Fields())
	assert.Equal(t, "content is required", valErr.First())
}

func TestValidate_FallsBackToFieldName(t *testing.T) {
	err := Validate(plainForm{Name: "x", Power: 0})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be at least 2 characters", fields["Name"])
	assert.Equal(t, "must be greater than 0", fields["Power"])
}

func TestValidate_RatingBounds(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		err := Validate(reviewForm{Content: "ok", Rating: rating})
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr, "rating %d", rating)
		assert.Contains(t, valErr.Fields(), "rating")
	}
}

func TestValidate_MaxLength(t *testing.T) {
	err := Validate(reviewForm{Content: strings.Repeat("a", 21), Rating: 4})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be at most 20 characters", valErr.Fields()["content"])
}

func TestValidationError_ErrorJoinsFields(t *testing.T) {
	err := Validate(reviewForm{Rating: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content is required")
	assert.Contains(t, err.Error(), "rating must be less than or equal to 5")
	assert.Contains(t, err.Error(), "; ")
}

func TestValidate_NonStruct(t *testing.T) {
	err := Validate("not a struct")
	require.Error(t, err)

	var valErr *ValidationError
	assert.False(t, asValidationError(err, &valErr))
}

func asValidationError(err error, target **ValidationError) bool {
	v, ok := err.(*ValidationError)
	if ok {
		*target = v
	}
	return ok
}
