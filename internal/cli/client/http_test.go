package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Message)

		json.NewEncoder(w).Encode(ChatResponse{Answer: "hi", Intent: "general", Citations: []Citation{}})
	}))
	defer srv.Close()

	api := &APIClient{baseURL: srv.URL, httpClient: srv.Client()}

	var resp ChatResponse
	require.NoError(t, api.PostJSON("/api/v1/chat", ChatRequest{Message: "hello"}, &resp))
	assert.Equal(t, "hi", resp.Answer)
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "message cannot be empty"})
	}))
	defer srv.Close()

	api := &APIClient{baseURL: srv.URL, httpClient: srv.Client()}

	err := api.PostJSON("/api/v1/chat", ChatRequest{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message cannot be empty")
	assert.Contains(t, err.Error(), "400")
}

func TestAPIClient_UploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "notes.txt", header.Filename)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(UploadResponse{Filename: header.Filename, ChunksProcessed: 1})
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("some text"), 0o644))

	api := &APIClient{baseURL: srv.URL, httpClient: srv.Client()}

	var resp UploadResponse
	require.NoError(t, api.UploadFile("/api/v1/documents/upload", path, &resp))
	assert.Equal(t, "notes.txt", resp.Filename)
	assert.Equal(t, 1, resp.ChunksProcessed)
}

func TestAPIClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]DocumentSummary{{Filename: "policy.pdf", Chunks: 3}})
	}))
	defer srv.Close()

	api := &APIClient{baseURL: srv.URL, httpClient: srv.Client()}

	var docs []DocumentSummary
	require.NoError(t, api.GetJSON("/api/v1/documents/", &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "policy.pdf", docs[0].Filename)
}
