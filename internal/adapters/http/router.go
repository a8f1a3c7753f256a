package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/config"
	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/core/ports"
)

const (
	maxJSONBodyBytes   = 4 << 20
	multipartMemory    = 8 << 20
	multipartOverhead  = 1 << 20
	historyExportName  = "slide-history.xlsx"
	defaultServiceName = "api"
)

// Metrics receives per-operation observations; *metrics.HTTPServerMetrics satisfies it.
type Metrics interface {
	RecordGeneration(service, outcome string, slides, issues int, duration time.Duration)
	RecordUpload(service, documentType, outcome string, pages int)
	RecordRender(service, format string)
}

type mount struct {
	pattern string
	handler http.Handler
}

type Router struct {
	uploader  ports.DocumentUploader
	generator ports.SlideGenerator
	catalog   ports.Catalog
	decks     ports.DeckService

	spec    *apiSpec
	metrics Metrics
	service string
	mounts  []mount
	now     func() time.Time

	maxUploadBytes   int64
	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
}

func NewRouter(
	cfg config.Config,
	uploader ports.DocumentUploader,
	generator ports.SlideGenerator,
	catalog ports.Catalog,
	decks ports.DeckService,
) *Router {
	spec, err := loadAPISpec()
	if err != nil {
		panic(err)
	}
	return &Router{
		uploader:         uploader,
		generator:        generator,
		catalog:          catalog,
		decks:            decks,
		spec:             spec,
		service:          defaultServiceName,
		now:              func() time.Time { return time.Now().UTC() },
		maxUploadBytes:   cfg.MaxUploadBytes,
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxInFlight:      cfg.APIMaxInFlight,
		backpressureWait: cfg.BackpressureWait(),
	}
}

func (rt *Router) WithMetrics(service string, m Metrics) *Router {
	if service != "" {
		rt.service = service
	}
	rt.metrics = m
	return rt
}

// Mount serves an extra handler (metrics, MCP) inside the same middleware chain.
func (rt *Router) Mount(pattern string, handler http.Handler) *Router {
	rt.mounts = append(rt.mounts, mount{pattern: pattern, handler: handler})
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", rt.health)
	mux.HandleFunc("/api/upload", rt.upload)
	mux.HandleFunc("/api/generate", rt.generate)
	mux.HandleFunc("/api/files", rt.listFiles)
	mux.HandleFunc("/api/history", rt.history)
	mux.HandleFunc("/api/history/export", rt.exportHistory)
	mux.HandleFunc("/api/render", rt.render)
	mux.HandleFunc("/api/generations/{id}", rt.getGeneration)
	mux.HandleFunc("/api/generations/{id}/deck", rt.getArchivedDeck)
	mux.HandleFunc("/openapi.json", rt.openAPI)
	for _, m := range rt.mounts {
		mux.Handle(m.pattern, m.handler)
	}
	mux.HandleFunc("/", rt.notFound)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = recoverMiddleware(handler)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "RFP Slide Generator API is running",
		"timestamp": rt.now().Format(time.RFC3339),
	})
}

func (rt *Router) upload(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, http.StatusBadRequest, "File too large", err.Error())
			return
		}
		writeFailure(w, http.StatusBadRequest, "No file uploaded", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "No file uploaded", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	documentType := strings.TrimSpace(r.FormValue("documentType"))
	result, err := rt.uploader.Upload(r.Context(), domain.UploadRequest{
		Filename:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		DocumentType: documentType,
	}, file)

	pages := 0
	if result != nil {
		pages = result.Pages
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(rt.service, documentType, outcomeLabel(err), pages)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (rt *Router) generate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	body, err := rt.readValidatedBody(r, "GenerateRequest")
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	var req domain.GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode generate request", err))
		return
	}

	start := time.Now()
	result, err := rt.generator.Generate(r.Context(), req)
	if rt.metrics != nil {
		slides, issues := 0, 0
		if result != nil {
			slides, issues = result.SlideCount, len(result.Issues)
		}
		rt.metrics.RecordGeneration(rt.service, outcomeLabel(err), slides, issues, time.Since(start))
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (rt *Router) listFiles(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	listing, err := rt.catalog.ListFiles(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeSuccess(w, listing)
}

func (rt *Router) history(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	generations, err := rt.catalog.History(r.Context(), limit)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"generations": generations})
}

func (rt *Router) exportHistory(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := rt.decks.ExportHistory(r.Context(), limit, &buf); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRender(rt.service, "xlsx")
	}
	writeAttachment(w, rt.decks.ExportContentType(), historyExportName, buf.Bytes())
}

func (rt *Router) render(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	body, err := rt.readValidatedBody(r, "RenderRequest")
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	var req domain.RenderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode render request", err))
		return
	}

	// Rendered in memory so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := rt.decks.Render(r.Context(), req, &buf); err != nil {
		rt.writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRender(rt.service, "pptx")
	}
	writeAttachment(w, rt.decks.DeckContentType(), rt.decks.DeckFilename(req.RFPFilename), buf.Bytes())
}

func (rt *Router) getGeneration(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	generation, err := rt.catalog.GetGeneration(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeSuccess(w, map[string]any{"generation": generation})
}

func (rt *Router) getArchivedDeck(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id := r.PathValue("id")
	deck, err := rt.decks.OpenArchived(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	defer deck.Close()

	setAttachmentHeaders(w, rt.decks.DeckContentType(), rt.decks.DeckFilename(id))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, deck); err != nil {
		slog.Warn("deck_stream_interrupted", "request_id", requestIDFromContext(r.Context()), "generation_id", id, "error", err)
	}
}

func (rt *Router) openAPI(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rt.spec.json)
}

func (rt *Router) notFound(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusNotFound, "Route not found", r.Method+" "+r.URL.Path)
}

func (rt *Router) readValidatedBody(r *http.Request, schema string) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodyBytes+1))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read request body", err)
	}
	if len(body) > maxJSONBodyBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read request body", errors.New("request body too large"))
	}
	if err := rt.spec.validateBody(schema, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeFailure(w, status, errorMessage(err), err.Error())
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "parse limit", fmt.Errorf("limit must be a positive integer, got %q", raw))
	}
	return limit, nil
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed", r.Method+" "+r.URL.Path)
	return false
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type failureEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, failureEnvelope{Success: false, Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func setAttachmentHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	setAttachmentHeaders(w, contentType, filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
