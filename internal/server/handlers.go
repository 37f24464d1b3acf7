package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cartastrutturata/pkg/buildinfo"
	"github.com/matzehuels/cartastrutturata/pkg/errors"
	"github.com/matzehuels/cartastrutturata/pkg/pipeline"
)

// Form field names of the download form.
const (
	fieldTitle  = "titolo"
	fieldAuthor = "autore"
	fieldCode   = "pseudocodifica"
)

// renderRequest is the JSON body of /api/render and /api/tree.
type renderRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Code        string `json:"code"`
	Format      string `json:"format,omitempty"`
	Strict      *bool  `json:"strict,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	type format struct {
		Name        string `json:"name"`
		ContentType string `json:"content_type"`
	}
	out := make([]format, len(pipeline.Formats))
	for i, f := range pipeline.Formats {
		out[i] = format{Name: f, ContentType: pipeline.ContentTypes[f]}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDownload renders the workbook for a submitted form.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := parseForm(r, s.maxUploadBytes); err != nil {
		s.writeError(w, r, requestError(err))
		return
	}

	opts := s.options(renderRequest{
		Title:  r.FormValue(fieldTitle),
		Author: r.FormValue(fieldAuthor),
		Code:   r.FormValue(fieldCode),
		Format: pipeline.FormatXLSX,
	})
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeArtifact(w, result, pipeline.FormatXLSX, opts.Title, true)
}

// handleRender renders one artifact from a JSON request.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.DefaultFormat
	}

	opts := s.options(req)
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeArtifact(w, result, req.Format, opts.Title, req.Format == pipeline.FormatXLSX)
}

// handleTree returns the block tree of a JSON request.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Format = pipeline.FormatTree

	result, err := s.runner.Execute(r.Context(), s.options(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeArtifact(w, result, pipeline.FormatTree, req.Title, false)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (renderRequest, error) {
	var req renderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, requestError(err)
	}
	return req, nil
}

// options builds pipeline options, falling back to the server defaults.
func (s *Server) options(req renderRequest) pipeline.Options {
	strict := s.strict
	if req.Strict != nil {
		strict = *req.Strict
	}
	label := req.ActionLabel
	if label == "" {
		label = s.actionLabel
	}
	return pipeline.Options{
		Title:        req.Title,
		Author:       req.Author,
		Code:         req.Code,
		Formats:      []string{req.Format},
		Strict:       strict,
		ActionLabel:  label,
		MaxCodeBytes: int(s.maxUploadBytes),
	}
}

func (s *Server) writeArtifact(w http.ResponseWriter, result *pipeline.Result, format, title string, attachment bool) {
	h := w.Header()
	h.Set("Content-Type", pipeline.ContentTypes[format])
	h.Set("X-Render-Id", result.ID.String())
	if result.CacheInfo.RenderHit {
		h.Set("X-Cache", "hit")
	} else {
		h.Set("X-Cache", "miss")
	}
	if attachment {
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": title + "." + pipeline.Extension(format),
		}))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	if errors.IsStructural(err) {
		return http.StatusUnprocessableEntity
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidTitle:
		return http.StatusBadRequest
	case errors.ErrCodeInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// requestError classifies a body that could not be read or decoded.
func requestError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.Wrap(errors.ErrCodeInputTooLarge, err, "request body too large (max %d bytes)", tooLarge.Limit)
	}
	if stderrors.Is(err, io.EOF) {
		return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return errors.New(errors.ErrCodeInvalidInput, "malformed request: %v", err)
}

func parseForm(r *http.Request, maxBytes int64) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "multipart/") {
		return r.ParseMultipartForm(maxBytes)
	}
	return r.ParseForm()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
