package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/beacon-cli/api/schemas"
	"github.com/xkilldash9x/beacon-cli/internal/domtree"
	"github.com/xkilldash9x/beacon-cli/internal/toolstore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// invokeBody wraps the invocation envelope with the document the engine
// resolves against. Callers driving a live browser omit it and rely on
// the server's executor instead.
type invokeBody struct {
	schemas.InvokeRequest
	DocumentHTML string `json:"document_html,omitempty"`
}

type validateBody struct {
	Spec         schemas.SelectorSpec `json:"selector_spec"`
	ParamValues  map[string]string    `json:"param_values,omitempty"`
	DocumentHTML string               `json:"document_html"`
}

type saveToolBody struct {
	schemas.ToolRecord
	// DocumentHTML, when present, validates the draft before persisting.
	DocumentHTML string `json:"document_html,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("Listing tools failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing tools failed", "")
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

func (s *Server) handleSaveTool(w http.ResponseWriter, r *http.Request) {
	var body saveToolBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed tool record: "+err.Error(), "")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "tool name is required", "")
		return
	}
	if body.DocumentHTML != "" {
		root, err := domtree.ParseString(body.DocumentHTML)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed document: "+err.Error(), "")
			return
		}
		res := s.validator.Validate(r.Context(), root, body.Spec, nil)
		if !res.Valid {
			writeJSON(w, http.StatusUnprocessableEntity, res)
			return
		}
	}
	rec := body.ToolRecord
	if err := s.store.Save(r.Context(), &rec); err != nil {
		s.log.Error("Saving tool failed", zap.String("tool", rec.Name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "saving tool failed", "")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(r.Context(), name); err != nil {
		if errors.Is(err, toolstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tool not found: "+name, "")
			return
		}
		s.log.Error("Deleting tool failed", zap.String("tool", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "deleting tool failed", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body invokeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed invoke request: "+err.Error(), "")
		return
	}
	tool, err := s.store.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, toolstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tool not found: "+name, "")
			return
		}
		s.log.Error("Loading tool failed", zap.String("tool", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading tool failed", "")
		return
	}
	if body.DocumentHTML == "" {
		writeError(w, http.StatusBadRequest, "document_html is required", "")
		return
	}
	root, err := domtree.ParseString(body.DocumentHTML)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed document: "+err.Error(), "")
		return
	}

	resp := s.newRunner(body.Debug).Run(r.Context(), root, tool, body.ParamValues)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var body validateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed validate request: "+err.Error(), "")
		return
	}
	root, err := domtree.ParseString(body.DocumentHTML)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed document: "+err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, s.validator.Validate(r.Context(), root, body.Spec, body.ParamValues))
}
