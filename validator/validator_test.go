package validator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/oseducation/kgrest/validator"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name     string `json:"name"      validate:"required,max=10"`
	NodeType string `json:"node_type" validate:"omitempty,oneof=lecture example"`
	Hidden   string `json:"-"         validate:"max=2"`
}

type settings struct {
	APIURL  string        `env:"KG_API_URL"      validate:"required,http_url"`
	Version string        `env:"KG_API_VERSION"  validate:"startswith=/"`
	Timeout time.Duration `env:"KG_HTTP_TIMEOUT" validate:"gt=0"`
}

func validationErrors(t *testing.T, err error) validator.ValidationErrors {
	t.Helper()

	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	return validationErrs
}

func TestValidate_Success(t *testing.T) {
	t.Parallel()

	err := validator.New().Validate(payload{Name: "Limits", NodeType: "lecture", Hidden: ""})

	require.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	t.Parallel()

	err := validator.New().Validate(payload{Name: "", NodeType: "quiz", Hidden: ""})
	errs := validationErrors(t, err)

	require.Len(t, errs, 2)
	require.Equal(t, "name", errs[0].Field)
	require.Equal(t, "name is required", errs[0].Message)
	require.Equal(t, "node_type", errs[1].Field)
	require.Equal(t, "node_type must be one of [lecture example]", errs[1].Message)
	require.Equal(t, "quiz", errs[1].Value)
}

func TestValidate_UsesEnvFieldNames(t *testing.T) {
	t.Parallel()

	err := validator.New().Validate(settings{APIURL: "not a url", Version: "api/v1", Timeout: 0})
	errs := validationErrors(t, err)

	require.Len(t, errs, 3)
	require.Equal(t, "KG_API_URL must be a valid URL", errs[0].Message)
	require.Equal(t, `KG_API_VERSION must start with "/"`, errs[1].Message)
	require.Equal(t, "KG_HTTP_TIMEOUT", errs[2].Field)
	require.Equal(t, "gt", errs[2].Tag)
}

func TestValidate_FallsBackToStructFieldName(t *testing.T) {
	t.Parallel()

	err := validator.New().Validate(payload{Name: "Limits", NodeType: "", Hidden: "toolong"})
	errs := validationErrors(t, err)

	require.Len(t, errs, 1)
	require.Equal(t, "Hidden", errs[0].Field)
	require.Equal(t, "Hidden must be at most 2", errs[0].Message)
}

func TestValidationErrors_ErrorJoinsMessages(t *testing.T) {
	t.Parallel()

	errs := validator.ValidationErrors{
		{Field: "name", Tag: "required", Value: "", Message: "name is required"},
		{Field: "node_type", Tag: "oneof", Value: "quiz", Message: "node_type must be one of [lecture example]"},
	}

	require.Equal(t, "name is required; node_type must be one of [lecture example]", errs.Error())
}

func TestValidate_ReturnsNonValidationErrorsUnchanged(t *testing.T) {
	t.Parallel()

	err := validator.New().Validate("not a struct")

	require.Error(t, err)

	var validationErrs validator.ValidationErrors
	require.False(t, errors.As(err, &validationErrs))
}
