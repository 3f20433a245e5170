package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caretower/component-tracker/internal/broadcast"
	"github.com/caretower/component-tracker/internal/config"
	"github.com/caretower/component-tracker/internal/core"
	"github.com/caretower/component-tracker/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 30 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize: 1 << 20,
			Timeout:     30 * time.Second,
		},
		Rate: config.RateLimitConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()

	mem := store.NewMemory()
	hub := broadcast.NewHub(broadcast.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	service := core.NewService(mem, hub, core.SchemeByName("standard"))
	return NewServer(testConfig(), service, hub), mem
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createComponent(t *testing.T, srv *Server, name string) core.Component {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/components", core.ComponentInput{
		Name:   name,
		Tower:  "Security",
		Status: "Released",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %q status = %d: %s", name, rec.Code, rec.Body.String())
	}
	return decode[core.Component](t, rec)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decode[map[string]any](t, rec)
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestCreateAndGetComponent(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createComponent(t, srv, "Auth Module")
	if created.ID == 0 || !strings.HasPrefix(created.ComponentID, "CMP-") {
		t.Errorf("created = %+v", created)
	}

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/components/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	got := decode[core.Component](t, rec)
	if got.Name != "Auth Module" || got.Tower != "Security" {
		t.Errorf("got = %+v", got)
	}
}

func TestCreateComponent_Invalid(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/components", core.ComponentInput{Name: ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/components", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
}

func TestGetComponent_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/components/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/components/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", rec.Code)
	}
}

func TestUpdateComponent(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createComponent(t, srv, "Auth Module")

	rec := doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/components/%d", created.ID),
		map[string]any{"status": "wip", "complexity": "high"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	updated := decode[core.Component](t, rec)
	if updated.Status != core.StatusInDevelopment || updated.Complexity != core.ComplexityComplex {
		t.Errorf("updated = %+v, values must be normalized", updated)
	}
	if updated.Name != "Auth Module" {
		t.Errorf("untouched field changed: %+v", updated)
	}
}

func TestDeleteComponent(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createComponent(t, srv, "Auth Module")

	rec := doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/components/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/components/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestBatchDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, createComponent(t, srv, fmt.Sprintf("c%d", i)).ID)
	}

	// One id does not exist; the others still delete.
	rec := doJSON(t, srv, http.MethodPost, "/api/components/batch-delete",
		map[string]any{"ids": append(ids, 999)})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	res := decode[core.BatchDeleteResult](t, rec)
	if res.DeletedCount != 3 {
		t.Errorf("DeletedCount = %d, want 3", res.DeletedCount)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/components/batch-delete", map[string]any{"ids": []int64{}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty ids status = %d, want 400", rec.Code)
	}
}

func TestListComponents_Filters(t *testing.T) {
	srv, mem := newTestServer(t)

	seed := []core.Component{
		{ComponentID: "CMP-00000001", Name: "Auth Module", Tower: "Security", Status: "Released", Complexity: "Simple", ReleaseYear: 2024, ReleaseMonth: 3},
		{ComponentID: "CMP-00000002", Name: "Records API", Tower: "Healthcare", Status: "In Development", Complexity: "Complex", ReleaseYear: 2025, ReleaseMonth: 1},
	}
	for i := range seed {
		if _, err := mem.Create(context.Background(), &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 2},
		{"by tower", "?tower=Security", 1},
		{"by status", "?status=Released", 1},
		{"by year", "?year=2024", 1},
		{"text search", "?search=records", 1},
		{"search with year token", "?search=auth+2025", 2},
		{"no match", "?tower=Nope", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodGet, "/api/components"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			got := decode[[]core.Component](t, rec)
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/components?month=13", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("month=13 status = %d, want 400", rec.Code)
	}
}

func uploadFile(t *testing.T, srv *Server, fileName string, contents []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(contents); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestUpload_CSV(t *testing.T) {
	srv, mem := newTestServer(t)

	csvData := strings.Join([]string{
		"tower,app_group,component_type,complexity,status,year,month,change_type,description",
		"Security,CoreBanking,Auth Module,low,live,2024,3,Enhancement,Token refresh",
		",,missing,,,,,,",
	}, "\n")

	rec := uploadFile(t, srv, "upload.csv", []byte(csvData))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	result := decode[core.UploadResult](t, rec)
	if !result.Success || result.Created != 1 || len(result.Errors) != 1 {
		t.Errorf("result = %+v", result)
	}

	all, _ := mem.List(context.Background(), core.Filter{})
	if len(all) != 1 {
		t.Errorf("stored components = %d, want 1", len(all))
	}
}

func TestUpload_UnsupportedFormat(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := uploadFile(t, srv, "notes.txt", []byte("not a component file"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	result := decode[core.UploadResult](t, rec)
	if result.Success || len(result.Errors) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestUpload_NoFile(t *testing.T) {
	srv, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createComponent(t, srv, "Auth Module")

	rec := doJSON(t, srv, http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "component_id,name,tower,") {
		t.Errorf("export header = %q", strings.SplitN(body, "\n", 2)[0])
	}
	if !strings.Contains(body, created.ComponentID) {
		t.Errorf("export missing component %s: %s", created.ComponentID, body)
	}
}

func TestAnalytics(t *testing.T) {
	srv, _ := newTestServer(t)
	createComponent(t, srv, "Auth Module")
	createComponent(t, srv, "Records API")

	rec := doJSON(t, srv, http.MethodGet, "/api/analytics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	a := decode[core.Analytics](t, rec)
	if a.TotalComponents != 2 {
		t.Errorf("TotalComponents = %d, want 2", a.TotalComponents)
	}
	if a.StatusDistribution[core.StatusReleased] != 2 {
		t.Errorf("StatusDistribution = %v", a.StatusDistribution)
	}
	if len(a.RecentComponents) != 2 {
		t.Errorf("RecentComponents = %d, want 2", len(a.RecentComponents))
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("1.2.3.4") || !rl.allow("1.2.3.4") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("1.2.3.4") {
		t.Error("third request within the window should be rejected")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("limits are per IP; a different IP should pass")
	}
}

func TestRateLimiterStopCleanup(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	rl.stopCleanup()
	select {
	case <-rl.stop:
	default:
		t.Fatal("stop channel should be closed after stopCleanup")
	}

	// A second call must not panic on an already-closed channel.
	rl.stopCleanup()
}

func TestShutdownStopsRateLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 10}

	mem := store.NewMemory()
	hub := broadcast.NewHub(broadcast.Options{})
	service := core.NewService(mem, hub, core.SchemeByName("standard"))
	srv := NewServer(cfg, service, hub)

	if srv.limiter == nil {
		t.Fatal("rate-limited server should hold its limiter")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	select {
	case <-srv.limiter.stop:
	case <-time.After(time.Second):
		t.Fatal("Shutdown should stop the limiter cleanup goroutine")
	}
}
