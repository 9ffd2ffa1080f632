package service

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dkrizic/memorylove/service/creation"
	"github.com/dkrizic/memorylove/service/memory"
	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// jsonOverhead is added to the base64-inflated upload limit for the JSON
// fields around inline photos.
const jsonOverhead int64 = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Step  int    `json:"step,omitempty"`
}

type idResponse struct {
	ID string `json:"id"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleGenerateID returns a fresh generated id without storing anything.
func (s *Server) handleGenerateID(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("service").Start(r.Context(), "handleGenerateID")
	defer span.End()

	writeJSON(w, http.StatusOK, idResponse{ID: memory.GenerateID()})
}

// handleAPICreate accepts a draft as JSON and saves it through the wizard.
func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleAPICreate")
	defer span.End()

	var draft creation.Draft
	limit := s.config.MaxUploadSize/3*4 + jsonOverhead
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&draft); err != nil {
		slog.WarnContext(ctx, "Invalid request body", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "request body must contain a single JSON object")
		span.SetStatus(codes.Error, "trailing data")
		return
	}

	record, err := creation.Submit(ctx, s.store, draft)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		var stepErr *creation.StepError
		switch {
		case errors.As(err, &stepErr):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: stepErr.Error(), Step: int(stepErr.Step)})
		case errors.Is(err, persistence.ErrStorageUnavailable):
			slog.ErrorContext(ctx, "Failed to save memory", "error", err)
			writeJSONError(w, http.StatusServiceUnavailable, persistence.ErrStorageUnavailable.Error())
		default:
			slog.ErrorContext(ctx, "Failed to save memory", "error", err)
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	slog.InfoContext(ctx, "Memory created", "id", record.ID)
	w.Header().Set("Location", "/api/memories/"+record.ID)
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleAPIGet")
	defer span.End()

	id := chi.URLParam(r, "id")
	record, found, err := s.store.Get(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load memory", "id", id, "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, persistence.ErrStorageUnavailable.Error())
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if !found {
		writeJSONError(w, http.StatusNotFound, "memory not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleAPIList")
	defer span.End()

	all, err := s.store.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list memories", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, persistence.ErrStorageUnavailable.Error())
		span.SetStatus(codes.Error, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handleAPIDelete removes a memory. Deleting an absent id succeeds.
func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleAPIDelete")
	defer span.End()

	id := chi.URLParam(r, "id")
	if err := s.store.Delete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete memory", "id", id, "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, persistence.ErrStorageUnavailable.Error())
		span.SetStatus(codes.Error, err.Error())
		return
	}
	slog.InfoContext(ctx, "Memory deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
