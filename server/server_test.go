package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"fcx/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t)
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write template %s: %v", name, err)
	}
}

func TestMountPattern(t *testing.T) {
	tests := []struct {
		name       string
		route      config.RouteConfig
		wantPath   string
		wantParams []string
	}{
		{"explicit path", config.RouteConfig{Name: "home", Path: "/home"}, "/home", nil},
		{"slug from name", config.RouteConfig{Name: "Daily News"}, "/daily-news", nil},
		{"missing slash", config.RouteConfig{Name: "x", Path: "home"}, "/home", nil},
		{"wildcards", config.RouteConfig{Name: "x", Path: "/users/{id}/posts/{post}"}, "/users/{id}/posts/{post}", []string{"id", "post"}},
		{"trailing wildcard", config.RouteConfig{Name: "x", Path: "/files/{path...}"}, "/files/{path...}", []string{"path"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, params := mountPattern(&tt.route)
			if path != tt.wantPath {
				t.Errorf("mountPattern() path = %q, want %q", path, tt.wantPath)
			}
			if len(params) != len(tt.wantParams) {
				t.Fatalf("mountPattern() params = %v, want %v", params, tt.wantParams)
			}
			for i := range params {
				if params[i] != tt.wantParams[i] {
					t.Errorf("mountPattern() params[%d] = %q, want %q", i, params[i], tt.wantParams[i])
				}
			}
		})
	}
}

func TestBuildFragment(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		_, err := buildFragment(&config.FragmentConfig{Name: "x"})
		if err == nil {
			t.Error("Expected error for fragment without source")
		}
	})

	t.Run("json type", func(t *testing.T) {
		frag, err := buildFragment(&config.FragmentConfig{Name: "feed", URL: "http://x", Type: config.BodyKindJSON})
		if err != nil {
			t.Fatalf("buildFragment() error = %v", err)
		}
		if got := frag.Type().String(); got != "json" {
			t.Errorf("Type = %q, want json", got)
		}
	})

	t.Run("models and policy", func(t *testing.T) {
		frag, err := buildFragment(&config.FragmentConfig{
			Name:     "news",
			URL:      "http://x/{id}",
			Required: true,
			Models:   []string{"feed"},
		})
		if err != nil {
			t.Fatalf("buildFragment() error = %v", err)
		}
		if !frag.Required() {
			t.Error("Expected fragment to be required")
		}
		if m := frag.Models(); len(m) != 1 || m[0] != "feed" {
			t.Errorf("Models = %v, want [feed]", m)
		}
	})
}

func TestServer_ComposedPage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<div>breaking news</div>"))
	}))
	defer upstream.Close()

	tmpDir := t.TempDir()
	writeTemplate(t, tmpDir, "home.html",
		`<html><body><fragment-inject fragment-name="news"></fragment-inject></body></html>`)

	cfg := &config.Config{
		Version: 1,
		Server:  config.ServerConfig{Listen: "localhost:0", TemplateRoot: tmpDir},
		Routes: []config.RouteConfig{
			{
				Name: "home",
				Path: "/home",
				Base: config.BaseConfig{File: "home.html"},
				Fragments: []config.FragmentConfig{
					{Name: "news", URL: upstream.URL},
				},
			},
		},
	}

	srv, err := New(cfg, nil, newTestLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	want := "<html><body><div>breaking news</div></body></html>"
	if got := rec.Body.String(); got != want {
		t.Errorf("Body = %q, want %q", got, want)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if len(rec.Header().Get("X-Request-Id")) == 0 {
		t.Error("Expected X-Request-Id header")
	}
}

func TestServer_PathAndQueryParams(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("user " + strings.TrimPrefix(r.URL.Path, "/users/") + " style " + r.URL.Query().Get("style")))
	}))
	defer upstream.Close()

	tmpDir := t.TempDir()
	writeTemplate(t, tmpDir, "profile.html",
		`<fragment-inject fragment-name="card"></fragment-inject>`)

	cfg := &config.Config{
		Version: 1,
		Server:  config.ServerConfig{Listen: "localhost:0", TemplateRoot: tmpDir},
		Routes: []config.RouteConfig{
			{
				Name: "profile",
				Path: "/profile/{id}",
				Base: config.BaseConfig{File: "profile.html"},
				Fragments: []config.FragmentConfig{
					{Name: "card", URL: upstream.URL + "/users/{id}?style={style}"},
				},
			},
		},
	}

	srv, err := New(cfg, nil, newTestLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile/42?style=dark", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "user 42 style dark" {
		t.Errorf("Body = %q, want interpolated upstream response", got)
	}
}

func TestServer_BadGatewayOnRequiredFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	tmpDir := t.TempDir()
	writeTemplate(t, tmpDir, "home.html",
		`<fragment-inject fragment-name="news"></fragment-inject>`)

	cfg := &config.Config{
		Version: 1,
		Server:  config.ServerConfig{Listen: "localhost:0", TemplateRoot: tmpDir},
		Routes: []config.RouteConfig{
			{
				Name: "home",
				Path: "/home",
				Base: config.BaseConfig{File: "home.html"},
				Fragments: []config.FragmentConfig{
					{Name: "news", URL: upstream.URL, Required: true},
				},
			},
		},
	}

	srv, err := New(cfg, nil, newTestLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", rec.Code)
	}
}

func TestServer_OptionalFailureServesFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	tmpDir := t.TempDir()
	writeTemplate(t, tmpDir, "home.html",
		`before <fragment-inject fragment-name="news"></fragment-inject> after`)

	cfg := &config.Config{
		Version: 1,
		Server:  config.ServerConfig{Listen: "localhost:0", TemplateRoot: tmpDir},
		Routes: []config.RouteConfig{
			{
				Name: "home",
				Path: "/home",
				Base: config.BaseConfig{File: "home.html"},
				Fragments: []config.FragmentConfig{
					{Name: "news", URL: upstream.URL, MissingMessage: "news is down"},
				},
			},
		},
	}

	srv, err := New(cfg, nil, newTestLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "before news is down after" {
		t.Errorf("Body = %q, want fallback in place", got)
	}
}

func TestServer_ReportCollectsArtifacts(t *testing.T) {
	tmpDir := t.TempDir()
	writeTemplate(t, tmpDir, "home.html", `<html>static</html>`)

	rptConf := &config.ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}
	rpt, err := rptConf.Prepare()
	if err != nil {
		t.Fatalf("Reporter Prepare() error = %v", err)
	}
	defer rpt.Close()

	cfg := &config.Config{
		Version: 1,
		Server:  config.ServerConfig{Listen: "localhost:0", TemplateRoot: tmpDir},
		Routes: []config.RouteConfig{
			{Name: "home", Path: "/home", Base: config.BaseConfig{File: "home.html"}},
		},
	}

	srv, err := New(cfg, rpt, newTestLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if rpt.Name() == "" {
		t.Error("Report has no backing file")
	}
}
