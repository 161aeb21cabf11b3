package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHTTPURL(t *testing.T) {
	valid := []string{"https://www.desmos.com/calculator", "http://localhost:5173/x?y=1", " https://example.com "}
	for _, s := range valid {
		assert.True(t, IsHTTPURL(s), s)
	}

	invalid := []string{"", "example.com", "ftp://example.com/file", "javascript:alert(1)", "https://", "/relative/path"}
	for _, s := range invalid {
		assert.False(t, IsHTTPURL(s), s)
	}
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type payload struct {
		URL     string `validate:"required,httpurl"`
		Content string `validate:"required,notblank"`
	}

	assert.NoError(t, v.Struct(payload{URL: "https://example.com", Content: "שלום"}))

	err := v.Struct(payload{URL: "mailto:dana@example.com", Content: "   "})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	tags := map[string]string{}
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{"URL": TagHTTPURL, "Content": TagNotBlank}, tags)
}
