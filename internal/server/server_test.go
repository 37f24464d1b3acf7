package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cartastrutturata/pkg/cache"
	"github.com/matzehuels/cartastrutturata/pkg/errors"
	cio "github.com/matzehuels/cartastrutturata/pkg/io"
	"github.com/matzehuels/cartastrutturata/pkg/observability"
	"github.com/matzehuels/cartastrutturata/pkg/pipeline"
)

const program = "INIZIO\n    SE x > 0\n    ALLORA\n        Azione 1\n    FINE-SE\nFINE"

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, nil, logger)
	ts := httptest.NewServer(New(runner, logger, opts...).Handler())
	t.Cleanup(func() {
		ts.Close()
		runner.Close()
	})
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestFormats(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/formats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var formats []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&formats); err != nil {
		t.Fatal(err)
	}
	if len(formats) != len(pipeline.Formats) || formats[0].Name != pipeline.FormatXLSX {
		t.Errorf("formats = %+v", formats)
	}
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t)
	form := url.Values{
		fieldTitle:  {"Esercizio"},
		fieldAuthor: {"Mario Rossi"},
		fieldCode:   {program},
	}
	resp, err := http.PostForm(ts.URL+"/download", form)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != pipeline.ContentTypes[pipeline.FormatXLSX] {
		t.Errorf("Content-Type = %q", got)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(got, "attachment") || !strings.Contains(got, "Esercizio.xlsx") {
		t.Errorf("Content-Disposition = %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("PK")) {
		t.Error("body is not an xlsx archive")
	}
}

func TestDownloadMultipart(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := newMultipart(&buf, map[string]string{
		fieldTitle: "Esercizio",
		fieldCode:  program,
	})
	resp, err := http.Post(ts.URL+"/download", mw, &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestDownloadMissingTitle(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.PostForm(ts.URL+"/download", url.Values{fieldCode: {program}})
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != errors.ErrCodeInvalidTitle || e.RequestID == "" {
		t.Errorf("error = %+v", e)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t)
	req := renderRequest{Title: "Esercizio", Code: program, Format: pipeline.FormatText}

	resp := postJSON(t, ts, "/api/render", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	if resp.Header.Get("Content-Disposition") != "" {
		t.Error("text output should be inline")
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Azione 1") {
		t.Errorf("body does not contain the action:\n%s", body)
	}

	again := postJSON(t, ts, "/api/render", req)
	if got := again.Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
}

func TestRenderErrors(t *testing.T) {
	yes := true
	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"bad format", renderRequest{Title: "t", Code: program, Format: "gif"}, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"empty code", renderRequest{Title: "t", Code: " "}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unclosed block", renderRequest{Title: "t", Code: "INIZIO\nAzione", Strict: &yes}, http.StatusUnprocessableEntity, errors.ErrCodeUnmatchedBlock},
		{"orphan condition", renderRequest{Title: "t", Code: "SE x\nAzione", Strict: &yes}, http.StatusUnprocessableEntity, errors.ErrCodeOrphanCondition},
		{"unknown field", map[string]string{"title": "t", "colour": "red"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"too large", renderRequest{Title: "t", Code: strings.Repeat("x", 512)}, http.StatusRequestEntityTooLarge, errors.ErrCodeInputTooLarge},
	}

	ts := newTestServer(t, WithMaxUploadBytes(256))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts, "/api/render", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", e.Code, tt.code, e.Message)
			}
		})
	}
}

func TestRenderDefaultStrict(t *testing.T) {
	ts := newTestServer(t, WithStrict(true))
	resp := postJSON(t, ts, "/api/render", renderRequest{Title: "t", Code: "INIZIO\nAzione", Format: "txt"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}

	no := false
	resp = postJSON(t, ts, "/api/render", renderRequest{Title: "t", Code: "INIZIO\nAzione", Format: "txt", Strict: &no})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("lenient override status = %d, want 200", resp.StatusCode)
	}
}

func TestRenderEmptyBody(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/render", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestTree(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts, "/api/tree", renderRequest{Title: "t", Code: program, Format: "xlsx"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	forest, err := cio.ReadJSON(resp.Body)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	// FINE closes INIZIO and stays behind as a zero-height sibling.
	if len(forest) != 2 {
		t.Fatalf("len(forest) = %d, want 2", len(forest))
	}
	if forest[0].Value != "INIZIO" || !forest[0].IsBlock() {
		t.Errorf("forest[0] = %q (block %v), want INIZIO block", forest[0].Value, forest[0].IsBlock())
	}
	if forest[1].Value != "FINE" || forest[1].Size != 0 {
		t.Errorf("forest[1] = {%q, %d}, want {FINE, 0}", forest[1].Value, forest[1].Size)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidTitle, http.StatusBadRequest},
		{errors.ErrCodeInputTooLarge, http.StatusRequestEntityTooLarge},
		{errors.ErrCodeOrphanCondition, http.StatusUnprocessableEntity},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errors.New(tt.code, "x")); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
	if got := statusFor(io.ErrUnexpectedEOF); got != http.StatusInternalServerError {
		t.Errorf("statusFor(plain error) = %d, want 500", got)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	resp, err = http.Get(ts.URL + "/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 404 {
		t.Errorf("statuses = %v, want [200 404]", hooks.statuses)
	}
}

func TestServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(pipeline.NewRunner(nil, nil, log.New(io.Discard)), log.New(io.Discard))

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
