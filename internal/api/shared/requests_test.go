package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Character   string `json:"character"   validate:"required"`
	Familiarity int    `json:"familiarity" validate:"required,min=1,max=5"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
		isEmpty bool
	}{
		{name: "valid json", body: `{"character":"学","familiarity":3}`},
		{name: "invalid json", body: `{"character":"学",}`, wantErr: true},
		{name: "empty body", body: "", wantErr: true, isEmpty: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tc.body))
			var target testRequest

			err := DecodeJSON(req, &target)

			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "学", target.Character)
				assert.Equal(t, 3, target.Familiarity)
				return
			}
			require.Error(t, err)
			if tc.isEmpty {
				assert.ErrorIs(t, err, ErrEmptyBody)
			}
		})
	}
}

type selfValidating struct{ err error }

func (s selfValidating) Validate() error { return s.err }

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(&testRequest{Character: "学", Familiarity: 5}))

	err := ValidateRequest(&testRequest{Character: "学", Familiarity: 6})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Equal(t, "Familiarity", validationErrs[0].Field())
	assert.Equal(t, "max", validationErrs[0].Tag())

	assert.NoError(t, ValidateRequest(selfValidating{}))
	assert.ErrorIs(t, ValidateRequest(selfValidating{err: assert.AnError}), assert.AnError)
}
