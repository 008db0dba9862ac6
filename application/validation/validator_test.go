package validation

import (
	stdErrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-sdk/portal-sdk-go/domain/entities"
	"github.com/portal-sdk/portal-sdk-go/domain/errors"
)

func TestAction_Valid(t *testing.T) {
	err := Action(entities.NewAction("https://portal.example.com/login",
		entities.WithMethod(entities.MethodPost),
		entities.WithData(map[string]string{"username": "a"}),
	))
	assert.NoError(t, err)
}

func TestAction_MissingURL(t *testing.T) {
	err := Action(entities.NewAction(""))

	require.Error(t, err)
	var ve *errors.ValidationError
	require.True(t, stdErrors.As(err, &ve))
	assert.Equal(t, "URL", ve.Field)
	assert.Contains(t, err.Error(), "required")
}

func TestAction_InvalidMethod(t *testing.T) {
	err := Action(entities.NewAction("https://portal", entities.WithMethod("DELETE")))

	var ve *errors.ValidationError
	require.True(t, stdErrors.As(err, &ve))
	assert.Equal(t, "Method", ve.Field)
	assert.Contains(t, err.Error(), "oneof")
}

func TestAction_EmptyMethodAllowed(t *testing.T) {
	assert.NoError(t, Action(entities.Action{URL: "https://portal"}))
}

func TestAction_NegativeTimeout(t *testing.T) {
	a := entities.NewAction("https://portal")
	a.Timeout = -time.Second

	var ve *errors.ValidationError
	require.True(t, stdErrors.As(Action(a), &ve))
	assert.Equal(t, "Timeout", ve.Field)
}

func TestStruct_NonStruct(t *testing.T) {
	err := Struct(42)

	var ve *errors.ValidationError
	require.True(t, stdErrors.As(err, &ve))
	assert.Empty(t, ve.Field)
}
