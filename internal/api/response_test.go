package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/documind-ai/documind/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDomainErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unsupported format", domain.NewUnsupportedFormat(".exe"), http.StatusBadRequest},
		{"parse failure", domain.NewParseFailure(errors.New("bad xref")), http.StatusBadRequest},
		{"empty content", domain.ErrEmptyContent, http.StatusBadRequest},
		{"validation", domain.NewDomainError(domain.ErrCodeValidation, "bad input"), http.StatusBadRequest},
		{"not found", domain.ErrDocumentNotFound, http.StatusNotFound},
		{"embedding failure", domain.NewEmbeddingFailure(errors.New("rate limit")), http.StatusInternalServerError},
		{"store failure", domain.NewStoreFailure(errors.New("down")), http.StatusInternalServerError},
		{"completion failure", domain.NewCompletionFailure(errors.New("overloaded")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped domain error", fmt.Errorf("ingest: %w", domain.ErrEmptyContent), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainErrorToHTTP(tt.err))
		})
	}
}

func TestHandleError_UsesDomainMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domain.NewUnsupportedFormat(".exe"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file format")
	// The wire message carries no internal error-code prefix.
	assert.NotContains(t, rec.Body.String(), "UNSUPPORTED_FORMAT")
}

func TestJSON_SetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
