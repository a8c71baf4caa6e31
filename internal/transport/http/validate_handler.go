// Package http contains the chi HTTP handlers of the watchdog API.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"watchdog/internal/config"
	"watchdog/internal/dataprocessing"
	apierrors "watchdog/internal/errors"
	"watchdog/internal/services"
	"watchdog/internal/validation"
)

// ValidateHandler serves the validation run endpoints.
type ValidateHandler struct {
	service        *services.ValidationService
	fileValidator  *validation.FileValidator
	defaultRules   *config.RulesDocument
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewValidateHandler creates the handler. defaultRules may be nil, in which
// case every request must carry its own rules document.
func NewValidateHandler(
	service *services.ValidationService,
	defaultRules *config.RulesDocument,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
	maxUploadBytes int64,
) *ValidateHandler {
	return &ValidateHandler{
		service:        service,
		fileValidator:  validation.NewFileValidator(logger),
		defaultRules:   defaultRules,
		logger:         logger.With(slog.String("component", "validate_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the validation routes.
func (h *ValidateHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/validate", h.ValidateBatch)
	r.Route("/runs/{id}", func(r chi.Router) {
		r.Get("/", h.GetRun)
		r.Get("/download/{kind}", h.DownloadArtifact)
	})

	return r
}

// RunResponse is the payload returned for a validation run.
type RunResponse struct {
	Run *services.Run `json:"run"`
}

// Render implements render.Renderer.
func (resp *RunResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ValidateBatch accepts a multipart upload ("file", optional "sheet" and
// "rules" fields), runs the gate, and returns the run summary.
func (h *ValidateHandler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_REQUEST", "Invalid multipart request", err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "MISSING_PARAMETER", "Missing batch file upload", err.Error()))
		return
	}
	defer file.Close()

	if err := h.fileValidator.ValidateUpload(header.Filename, header.Size, h.maxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat(err.Error()))
		return
	}

	doc := h.defaultRules
	if rulesYAML := r.FormValue("rules"); rulesYAML != "" {
		doc, err = config.ParseRulesDocument([]byte(rulesYAML))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRulesDoc(err))
			return
		}
	}
	if doc == nil {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest, "MISSING_PARAMETER", "No rules document supplied and no default configured"))
		return
	}

	batchPath, cleanup, err := h.spoolUpload(file, header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer cleanup()

	batch, err := dataprocessing.LoadFile(batchPath, r.FormValue("sheet"))
	if err != nil {
		if errors.Is(err, dataprocessing.ErrUnsupportedFormat) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat(filepath.Ext(header.Filename)))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_REQUEST", "Failed to load batch file", err.Error()))
		return
	}

	result, err := h.service.Execute(r.Context(), batch, doc)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.Render(w, r, &RunResponse{Run: result.Run})
}

// GetRun returns the summary of a completed run.
func (h *ValidateHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, ok := h.service.GetRun(id)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrRunNotFound)
		return
	}
	render.Render(w, r, &RunResponse{Run: run})
}

// DownloadArtifact streams a run's clean or flagged CSV.
func (h *ValidateHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind := chi.URLParam(r, "kind")

	path, err := h.service.ArtifactPath(id, kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}

// spoolUpload writes the uploaded stream to a temp file so the extension
// based loaders can open it.
func (h *ValidateHandler) spoolUpload(file io.Reader, filename string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "watchdog-upload-*")
	if err != nil {
		return "", nil, apierrors.NewWithDetails(
			http.StatusInternalServerError, "FILESYSTEM_ERROR", "Failed to spool upload", err.Error())
	}
	cleanup := func() { os.RemoveAll(dir) }

	path := filepath.Join(dir, filepath.Base(filename))
	out, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, apierrors.NewWithDetails(
			http.StatusInternalServerError, "FILESYSTEM_ERROR", "Failed to spool upload", err.Error())
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		cleanup()
		return "", nil, apierrors.NewWithDetails(
			http.StatusInternalServerError, "FILESYSTEM_ERROR", "Failed to spool upload", err.Error())
	}
	return path, cleanup, nil
}
