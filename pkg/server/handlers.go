// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kadirpekel/kotoba/pkg/bedrock"
	"github.com/kadirpekel/kotoba/pkg/extract"
	"github.com/kadirpekel/kotoba/pkg/rag"
)

type ingestRequest struct {
	Documents []rag.DocumentInput `json:"documents"`
}

type askRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type reingestRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleIngest(w http.ResponseWriter, req *http.Request) {
	var body ingestRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents is required")
		return
	}

	result, err := s.service.Ingest(req.Context(), body.Documents)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAsk(w http.ResponseWriter, req *http.Request) {
	var body askRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := s.service.Answer(req.Context(), body.Query, body.TopK)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, req *http.Request) {
	docs, err := s.service.ListDocuments(req.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, req *http.Request) {
	docID := chi.URLParam(req, "docID")
	if err := s.service.Delete(req.Context(), docID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": docID})
}

func (s *Server) handleReingest(w http.ResponseWriter, req *http.Request) {
	docID := chi.URLParam(req, "docID")

	var body reingestRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.service.Reingest(req.Context(), docID, body.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleUpload accepts a multipart file, extracts its text, and ingests
// it under the uploaded filename as doc_id (or an explicit doc_id form
// field).
func (s *Server) handleUpload(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, s.maxUploadBytes)
	if err := req.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if !extract.Supported(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	text, err := extract.Text(header.Filename, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to extract text: "+err.Error())
		return
	}

	docID := req.FormValue("doc_id")
	if docID == "" {
		docID = header.Filename
	}

	result, err := s.service.Reingest(req.Context(), docID, text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_id":         docID,
		"indexed_points": result.IndexedPoints,
	})
}

func (s *Server) handleUI(w http.ResponseWriter, req *http.Request) {
	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UI not available")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps pipeline errors onto HTTP statuses: unusable
// input is the client's fault, upstream model and store failures are
// gateway errors.
func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *bedrock.APIError
	var shapeErr *rag.ShapeError

	switch {
	case errors.Is(err, rag.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &apiErr), errors.As(err, &shapeErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
