// Package api exposes the HTTP handlers for logging and viewing baby activities.
package api

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nealrs/baby-tracker/internal/domain"
	"github.com/nealrs/baby-tracker/internal/observability"
)

// Fixed acknowledgments; callers cannot tell extraction from persistence failures.
const (
	MessageSuccess = "SUCCESS! We got you fam!"
	MessageFailure = "ERROR - Try that again?"
)

const (
	maxBodyBytes  = 64 << 10
	probeTimeout  = 2 * time.Second
	pageTemplate  = "index.html.tmpl"
	formTextField = "text"
)

//go:embed templates/*.tmpl
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/"+pageTemplate))

// Service is the ingestion and display workflow the handlers drive.
type Service interface {
	Ingest(ctx context.Context, text string) (domain.Batch, error)
	Dashboard(ctx context.Context) domain.Dashboard
}

// ProbeFunc checks database reachability, returning the database clock.
type ProbeFunc func(ctx context.Context) (time.Time, error)

// Option configures optional Handler behaviour.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithTitle sets the page heading, usually the baby's name.
func WithTitle(title string) Option {
	return func(h *Handler) {
		h.title = title
	}
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service  Service
	probe    ProbeFunc
	validate *validator.Validate
	logger   zerolog.Logger
	title    string
}

// NewHandler builds a Handler.
func NewHandler(service Service, probe ProbeFunc, opts ...Option) *Handler {
	h := &Handler{
		service:  service,
		probe:    probe,
		validate: NewValidator(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.root)
	mux.HandleFunc("/v1/records", h.records)
	mux.HandleFunc("/healthz", h.healthz)
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.renderPage(w, r)
	case http.MethodPost:
		h.ingest(w, r)
	default:
		writeMessage(w, http.StatusMethodNotAllowed, "unsupported method")
	}
}

// IngestRequest is the payload for POST /.
type IngestRequest struct {
	Text string `json:"text" validate:"required,nonblank,max=4000"`
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request) {
	req, err := decodeIngest(w, r)
	if err == nil {
		err = h.validate.Struct(req)
	}
	if err != nil {
		observability.RecordIngest(observability.ResultInvalidRequest)
		h.logger.Warn().Err(err).Msg("rejected ingestion request")
		writeMessage(w, http.StatusBadRequest, MessageFailure)
		return
	}

	batch, err := h.service.Ingest(r.Context(), strings.TrimSpace(req.Text))
	if err != nil {
		result := observability.ResultPersistenceFailed
		if errors.Is(err, domain.ErrExtractionFailed) {
			result = observability.ResultExtractionFailed
		}
		observability.RecordIngest(result)
		h.logger.Error().Err(err).Str("result", result).Msg("ingestion failed")
		writeMessage(w, http.StatusInternalServerError, MessageFailure)
		return
	}

	observability.RecordIngest(observability.ResultSuccess)
	h.logger.Info().
		Int("feeds", len(batch.Feeds)).
		Int("pumps", len(batch.Pumps)).
		Int("diapers", len(batch.Diapers)).
		Msg("activities logged")
	writeMessage(w, http.StatusOK, MessageSuccess)
}

func decodeIngest(w http.ResponseWriter, r *http.Request) (IngestRequest, error) {
	var req IngestRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Text = r.PostFormValue(formTextField)
	return req, nil
}

type pageData struct {
	Title     string
	Dashboard domain.Dashboard
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: h.title, Dashboard: h.service.Dashboard(r.Context())}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		h.logger.Error().Err(err).Msg("render page")
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) records(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMessage(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}
	writeJSON(w, http.StatusOK, h.service.Dashboard(r.Context()))
}

// healthz runs the database probe for container health checks.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	if _, err := h.probe(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("health probe failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// MessageResponse is the body of every ingestion response.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
