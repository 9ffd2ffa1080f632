package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dkrizic/memorylove/service/creation"
	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/dkrizic/memorylove/service/viewer"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	msgStorageUnavailable = "Não foi possível salvar sua memória. Tente novamente."
	msgUploadTooLarge     = "As fotos enviadas são grandes demais."
	msgPhotoUnreadable    = "Não foi possível ler uma das fotos enviadas. Envie novamente."
)

type createPage struct {
	Version string
	Steps   int
	Draft   creation.Draft
	Error   string
}

// render executes a template into a buffer so the status code can still be
// chosen when execution fails.
func (s *Server) render(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	span := trace.SpanFromContext(ctx)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(ctx, "Failed to render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderNotFound(ctx context.Context, w http.ResponseWriter, id string) {
	s.render(ctx, w, http.StatusNotFound, "notfound.gohtml", struct {
		Version string
		ID      string
	}{
		Version: s.config.Version,
		ID:      id,
	})
}

// handleIndex renders the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleIndex")
	defer span.End()

	s.render(ctx, w, http.StatusOK, "index.gohtml", struct {
		Version string
	}{
		Version: s.config.Version,
	})
}

// handleCreateForm renders an empty wizard.
func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleCreateForm")
	defer span.End()

	s.render(ctx, w, http.StatusOK, "create.gohtml", createPage{
		Version: s.config.Version,
		Steps:   creation.Steps,
	})
}

// handleCreate reads the multipart wizard form, saves the memory and
// redirects to the success page.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleCreate")
	defer span.End()

	page := createPage{
		Version: s.config.Version,
		Steps:   creation.Steps,
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	if err := r.ParseMultipartForm(s.config.MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		span.SetStatus(codes.Error, err.Error())
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.WarnContext(ctx, "Upload too large", "limit", tooLarge.Limit)
			page.Error = msgUploadTooLarge
			s.render(ctx, w, http.StatusRequestEntityTooLarge, "create.gohtml", page)
			return
		}
		slog.WarnContext(ctx, "Failed to parse create form", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	page.Draft = creation.Draft{
		Title:      r.FormValue("title"),
		Message:    r.FormValue("message"),
		MusicURL:   r.FormValue("musicUrl"),
		CustomSlug: r.FormValue("customSlug"),
	}
	if r.MultipartForm != nil {
		photos, err := readPhotos(r.MultipartForm.File["photos"])
		if err != nil {
			slog.WarnContext(ctx, "Failed to read uploaded photos", "error", err)
			span.SetStatus(codes.Error, err.Error())
			page.Error = msgPhotoUnreadable
			s.render(ctx, w, http.StatusBadRequest, "create.gohtml", page)
			return
		}
		page.Draft.Photos = photos
	}
	span.SetAttributes(attribute.Int("photos", len(page.Draft.Photos)))

	record, err := creation.Submit(ctx, s.store, page.Draft)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		var stepErr *creation.StepError
		switch {
		case errors.As(err, &stepErr):
			slog.InfoContext(ctx, "Draft rejected", "step", stepErr.Step.String(), "reason", stepErr.Reason)
			page.Error = stepErr.Error()
			s.render(ctx, w, http.StatusBadRequest, "create.gohtml", page)
		case errors.Is(err, persistence.ErrStorageUnavailable):
			slog.ErrorContext(ctx, "Failed to save memory", "error", err)
			page.Error = msgStorageUnavailable
			s.render(ctx, w, http.StatusServiceUnavailable, "create.gohtml", page)
		default:
			slog.ErrorContext(ctx, "Failed to save memory", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	slog.InfoContext(ctx, "Memory created", "id", record.ID)
	http.Redirect(w, r, "/success/"+record.ID, http.StatusSeeOther)
}

// readPhotos converts every uploaded file to a data URL. One unreadable file
// fails the whole upload.
func readPhotos(files []*multipart.FileHeader) ([]string, error) {
	var photos []string
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		photo, err := creation.PhotoFromUpload(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

// handleSuccess shows the share link and QR code of a freshly created memory.
func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleSuccess")
	defer span.End()

	id := chi.URLParam(r, "id")
	record, found, err := s.store.Get(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load memory", "id", id, "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if !found {
		s.renderNotFound(ctx, w, id)
		return
	}

	link := viewer.ShareURL(s.origin(r), id)
	qr, err := viewer.QRCodeDataURL(link)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to render QR code", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	s.render(ctx, w, http.StatusOK, "success.gohtml", struct {
		Version    string
		ID         string
		Title      string
		ShareURL   string
		QRCode     string
		QRFilename string
	}{
		Version:    s.config.Version,
		ID:         id,
		Title:      record.Title,
		ShareURL:   link,
		QRCode:     qr,
		QRFilename: viewer.QRFilename(id),
	})
}

// handleMemory renders the public view of a memory.
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleMemory")
	defer span.End()

	id := chi.URLParam(r, "id")
	record, found, err := s.store.Get(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load memory", "id", id, "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if !found {
		slog.InfoContext(ctx, "Memory not found", "id", id)
		s.renderNotFound(ctx, w, id)
		return
	}

	s.render(ctx, w, http.StatusOK, "memory.gohtml", struct {
		Version string
		Memory  persistence.Record
	}{
		Version: s.config.Version,
		Memory:  record,
	})
}

// handleQRCode serves the QR code of a memory as a PNG download.
func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("service").Start(r.Context(), "handleQRCode")
	defer span.End()

	id := chi.URLParam(r, "id")
	_, found, err := s.store.Get(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load memory", "id", id, "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	png, err := viewer.QRCode(viewer.ShareURL(s.origin(r), id), viewer.DefaultQRSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to render QR code", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+viewer.QRFilename(id)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// handleHealth reports whether the storage medium answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "memories": n})
}
