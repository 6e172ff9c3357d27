package validation_test

import (
	"net/http"
	"testing"

	domainerrors "github.com/listenupapp/librarian/internal/errors"
	"github.com/listenupapp/librarian/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	Status string `json:"reading_status,omitempty" validate:"omitempty,reading_status"`
	Email  string `json:"email" validate:"omitempty,email"`
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(bookRequest{Title: "Dune", Status: "completed"}))
	assert.NoError(t, v.Validate(bookRequest{Title: "Dune"}))
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name  string
		req   bookRequest
		field string
		msg   string
	}{
		{"missing title", bookRequest{}, "title", "is required"},
		{"bad status", bookRequest{Title: "Dune", Status: "finished"}, "reading_status", "must be Reading or Completed"},
		{"bad email", bookRequest{Title: "Dune", Email: "nope"}, "email", "must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domainerrors.CodeValidation, de.Code)
			assert.Equal(t, http.StatusBadRequest, de.HTTPStatus())

			details, ok := de.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.msg, details[tt.field])
		})
	}
}
