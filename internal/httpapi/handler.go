package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/a3tai/mcp-smartform-parser/internal/smartform"
	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
)

// Routes
const (
	ParsePath   = "/parse-smartform/"
	SummaryPath = "/parse-smartform/summary"
	BatchPath   = "/parse-smartform/batch"
	HealthPath  = "/healthz"
	MCPPath     = "/mcp"
)

// Handler serves the SmartForm HTTP API
type Handler struct {
	service        *smartform.Service
	maxRequestSize int64
	mcp            http.Handler
	logRequests    bool
	mux            *http.ServeMux
}

// Option configures a Handler
type Option func(*Handler)

// WithMCP mounts an MCP transport handler at /mcp
func WithMCP(handler http.Handler) Option {
	return func(h *Handler) {
		h.mcp = handler
	}
}

// WithRequestLogging logs every request with its status and duration
func WithRequestLogging(enabled bool) Option {
	return func(h *Handler) {
		h.logRequests = enabled
	}
}

// NewHandler creates the HTTP API for a service
func NewHandler(service *smartform.Service, opts ...Option) *Handler {
	h := &Handler{
		service:        service,
		maxRequestSize: service.MaxRequestSize(),
		mux:            http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.registerHandlers()
	return h
}

func (h *Handler) registerHandlers() {
	h.mux.HandleFunc("POST "+ParsePath+"{$}", h.handleParse)
	h.mux.HandleFunc("POST "+SummaryPath, h.handleSummary)
	h.mux.HandleFunc("POST "+BatchPath, h.handleBatch)
	h.mux.HandleFunc("GET "+HealthPath, h.handleHealth)
	if h.mcp != nil {
		h.mux.Handle(MCPPath, h.mcp)
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.logRequests {
		h.mux.ServeHTTP(w, r)
		return
	}

	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	req, err := smartform.DecodeParseRequest(body)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.ParseRows(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	rows, err := smartform.DecodeRows(body)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.service.Summarize(r.Context(), rows)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	req, err := smartform.DecodeBatch(body)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.ParseBatch(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  h.service.CacheStats(),
	})
}

// readBody reads the request body within the size limit, writing the error
// response itself when it fails
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	reader := r.Body
	if h.maxRequestSize > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			writeError(w, sferrors.Newf(sferrors.ErrorTypeRequestTooLarge,
				"request body exceeds %d bytes", maxErr.Limit))
			return nil, false
		}
		writeError(w, sferrors.Wrap(sferrors.ErrorTypeInvalidInput, err).WithContext("reading request body"))
		return nil, false
	}
	return body, true
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Detail string `json:"detail"`
	Type   string `json:"type,omitempty"`
}

// StatusFor maps an error to the HTTP status reported for it
func StatusFor(err error) int {
	switch sferrors.TypeOf(err) {
	case sferrors.ErrorTypeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case sferrors.ErrorTypeInvalidInput, sferrors.ErrorTypeInvalidFile:
		return http.StatusBadRequest
	case sferrors.ErrorTypeSecurityRestriction:
		return http.StatusForbidden
	case sferrors.ErrorTypeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := errorResponse{Detail: err.Error()}
	if t := sferrors.TypeOf(err); t != sferrors.ErrorTypeUnknown {
		resp.Type = t.String()
	}
	if errType := sferrors.TypeOf(err); !errType.IsClientError() {
		log.Printf("request failed (%s): %v", errType.GetSeverity(), err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush lets streaming MCP responses through the recorder
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
