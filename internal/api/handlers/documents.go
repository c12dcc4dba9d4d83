package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/documind-ai/documind/internal/api"
	"github.com/documind-ai/documind/internal/domain"
	"github.com/documind-ai/documind/internal/service"
	"github.com/go-chi/chi/v5"
)

// DocumentServiceInterface defines the document operations the handler depends on
type DocumentServiceInterface interface {
	IngestDocument(ctx context.Context, data []byte, filename string) (*service.IngestResult, error)
	ListDocuments(ctx context.Context) ([]service.SourceSummary, error)
	DownloadURL(ctx context.Context, filename string) (string, error)
}

// DocumentHandler handles document upload and listing endpoints
type DocumentHandler struct {
	svc DocumentServiceInterface
}

func NewDocumentHandler(svc DocumentServiceInterface) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// UploadResponse is the payload returned after a successful ingestion
type UploadResponse struct {
	Filename        string `json:"filename"`
	Message         string `json:"message"`
	ChunksProcessed int    `json:"chunks_processed"`
}

// DocumentSummary is one entry of the document listing
type DocumentSummary struct {
	Filename       string    `json:"filename"`
	Chunks         int       `json:"chunks"`
	LastIngestedAt time.Time `json:"last_ingested_at"`
}

// DownloadResponse carries a presigned URL for an archived original
type DownloadResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Upload handles POST /api/v1/documents/upload
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "multipart form must include a 'file' part")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.svc.IngestDocument(r.Context(), data, header.Filename)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, UploadResponse{
		Filename:        result.Filename,
		Message:         "Document processed and indexed successfully.",
		ChunksProcessed: result.ChunksProcessed,
	})
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.ListDocuments(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	docs := make([]DocumentSummary, 0, len(summaries))
	for _, s := range summaries {
		docs = append(docs, DocumentSummary{
			Filename:       s.SourceName,
			Chunks:         s.ChunkCount,
			LastIngestedAt: s.LastIngestedAt,
		})
	}
	api.JSON(w, http.StatusOK, docs)
}

// Download handles GET /api/v1/documents/{filename}/download
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		api.HandleError(w, domain.NewDomainError(domain.ErrCodeValidation, "filename is required"))
		return
	}

	url, err := h.svc.DownloadURL(r.Context(), filename)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, DownloadResponse{Filename: filename, URL: url})
}
