package validator_test

import (
	"errors"
	"testing"

	"ideas-jar/src/domain"
	"ideas-jar/src/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ideaInput struct {
	Content  string `json:"content" validate:"required,not_blank"`
	Priority string `json:"priority" validate:"omitempty,priority"`
}

type pageInput struct {
	Skip  *int `form:"skip" validate:"omitempty,min=0"`
	Limit *int `form:"limit" validate:"omitempty,min=0"`
}

func TestCustomValidator_Validate(t *testing.T) {
	cv := validator.NewCustomValidator()

	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
		field   string
		message string
	}{
		{name: "valid", input: ideaInput{Content: "hello", Priority: "high"}},
		{name: "priority omitted", input: ideaInput{Content: "hello"}},
		{name: "priority case insensitive", input: ideaInput{Content: "hello", Priority: "LOW"}},
		{name: "empty content", input: ideaInput{}, wantErr: true, field: "content", message: "Idea content cannot be empty"},
		{name: "blank content", input: ideaInput{Content: "   "}, wantErr: true, field: "content", message: "Idea content cannot be empty"},
		{name: "unknown priority", input: ideaInput{Content: "x", Priority: "urgent"}, wantErr: true, field: "priority", message: "priority must be one of: high, medium, low"},
		{name: "negative skip", input: pageInput{Skip: intPtr(-1)}, wantErr: true, field: "skip", message: "skip must be at least 0"},
		{name: "nil paging", input: pageInput{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cv.Validate(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var ve validator.ValidationErrors
			require.True(t, errors.As(err, &ve))
			require.NotEmpty(t, ve.Errors)
			assert.Equal(t, tt.field, ve.Errors[0].Field)
			assert.Equal(t, tt.message, ve.Errors[0].Message)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestCustomValidator_ParseID(t *testing.T) {
	cv := validator.NewCustomValidator()

	id, err := cv.ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	id, err = cv.ParseID("0")
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	id, err = cv.ParseID("2147483647")
	require.NoError(t, err)
	assert.Equal(t, 2147483647, id)

	for _, bad := range []string{"abc", "1.5", "", "12abc"} {
		_, err := cv.ParseID(bad)
		assert.Error(t, err, bad)
		assert.True(t, domain.IsValidation(err), bad)
	}

	// 32bit を超える ID は存在し得ないので not found
	for _, huge := range []string{"2147483648", "3000000000", "-3000000000", "99999999999999999999"} {
		_, err := cv.ParseID(huge)
		assert.True(t, domain.IsNotFound(err), huge)
		assert.False(t, domain.IsValidation(err), huge)
	}
}

func intPtr(v int) *int { return &v }

func TestNewCustomValidator_RegistersRules(t *testing.T) {
	var cv *validator.CustomValidator
	require.NotPanics(t, func() { cv = validator.NewCustomValidator() })

	// 登録済みのタグでなければ validator/v10 は panic する
	err := cv.Validate(ideaInput{Content: "  ", Priority: "urgent"})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	tags := map[string]string{}
	for _, e := range verrs.Errors {
		tags[e.Field] = e.Tag
	}
	assert.Equal(t, "not_blank", tags["content"])
	assert.Equal(t, "priority", tags["priority"])
}
