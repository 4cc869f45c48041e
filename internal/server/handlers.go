package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/yomitori/internal/blob"
	"github.com/hyperjump/yomitori/internal/docstore"
	"github.com/hyperjump/yomitori/internal/models"
	"github.com/hyperjump/yomitori/internal/pipeline"
	"github.com/hyperjump/yomitori/internal/query"
	"github.com/hyperjump/yomitori/internal/status"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	jobID, err := s.pipeline.Submit(r.Context(), header.Filename, content, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyFilename) || errors.Is(err, pipeline.ErrEmptyFile) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("submit failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"job_id":      jobID,
		"document_id": jobID,
		"status":      string(models.StatusQueued),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	rec, err := s.status.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "not found")
			return
		}
		s.logger.Error("status read failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	rec, err := s.status.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "not found")
			return
		}
		s.logger.Error("result read failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec.Status != models.StatusCompleted {
		s.respondError(w, http.StatusConflict, "not ready")
		return
	}
	entities := rec.Entities
	if entities == nil {
		entities = []models.Entity{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"text":     rec.Text,
		"entities": entities,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := s.query.Search(r.Context(), q)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.docs.Get(r.Context(), id)
	if err != nil || doc.BlobURI == "" {
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			s.logger.Error("download lookup failed", zap.Error(err))
		}
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}
	ttl := time.Duration(s.queryCfg.SignedURLMinutes) * time.Minute
	url, err := s.blobs.SignedURL(doc.BlobURI, ttl)
	if err != nil {
		s.logger.Error("sign url failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

type chatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "id")
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	answer, err := s.query.Ask(r.Context(), docID, req.Question)
	if err != nil {
		if errors.Is(err, query.ErrEmptyQuestion) {
			s.respondError(w, http.StatusBadRequest, "empty question")
			return
		}
		s.logger.Error("chat failed", zap.String("document_id", docID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

// handleFile serves blob content for signed preview URLs issued by the store.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusForbidden, "invalid signature")
		return
	}
	path, err := s.blobs.Verify(rel, exp, r.URL.Query().Get("sig"))
	if err != nil {
		if errors.Is(err, blob.ErrBadSignature) {
			s.respondError(w, http.StatusForbidden, "invalid or expired signature")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, map[string]string{"error": message})
}
