package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"fcx/compose"
	"fcx/fragment"
)

func TestStatic_String(t *testing.T) {
	frag := fragment.HTML("greeter", fragment.WithInline("Hello"))

	body, err := Static{}.Fetch(context.Background(), frag, nil, compose.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body.String() != "Hello" {
		t.Errorf("Fetch() = %q, want %q", body.String(), "Hello")
	}
	if body.ContentType() != fragment.ContentTypeHTML {
		t.Errorf("ContentType() = %q, want html default", body.ContentType())
	}
}

func TestStatic_StructuredJSON(t *testing.T) {
	frag := fragment.JSON("user", fragment.WithInline(map[string]any{"name": "bob"}))

	body, err := Static{}.Fetch(context.Background(), frag, nil, compose.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body.String() != `{"name":"bob"}` {
		t.Errorf("Fetch() = %q, want serialized inline data", body.String())
	}
	if body.ContentType() != fragment.ContentTypeJSON {
		t.Errorf("ContentType() = %q, want %q", body.ContentType(), fragment.ContentTypeJSON)
	}
}

func TestStatic_NoData(t *testing.T) {
	if _, err := (Static{}).Fetch(context.Background(), fragment.HTML("empty"), nil, compose.FetchOptions{}); !errors.Is(err, ErrNoSource) {
		t.Fatalf("Fetch() error = %v, want ErrNoSource", err)
	}
}

func TestLocal_ReadsBelowRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "nav.html"), []byte("<nav/>"), 0644); err != nil {
		t.Fatal(err)
	}
	frag := fragment.HTML("nav", fragment.WithLocal("nav.html"))

	body, err := NewLocal(root, zaptest.NewLogger(t)).Fetch(context.Background(), frag, nil, compose.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body.String() != "<nav/>" {
		t.Errorf("Fetch() = %q, want file contents", body.String())
	}
	if !strings.HasPrefix(body.ContentType(), "text/html") {
		t.Errorf("ContentType() = %q, want text/html from extension", body.ContentType())
	}
}

func TestLocal_Interpolation(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "sports.html"), []byte("scores"), 0644); err != nil {
		t.Fatal(err)
	}
	frag := fragment.HTML("section", fragment.WithLocal("{section}.html"))

	body, err := NewLocal(root, zaptest.NewLogger(t)).Fetch(context.Background(), frag,
		compose.RenderContext{"section": "sports"}, compose.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body.String() != "scores" {
		t.Errorf("Fetch() = %q, want %q", body.String(), "scores")
	}
}

func TestLocal_RejectsEscape(t *testing.T) {
	frag := fragment.HTML("evil", fragment.WithLocal("../secrets.html"))

	_, err := NewLocal(t.TempDir(), zaptest.NewLogger(t)).Fetch(context.Background(), frag, nil, compose.FetchOptions{})
	if err == nil {
		t.Fatal("Fetch() with escaping path expected error")
	}
}

func TestRemote_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/top/5" {
			t.Errorf("request path = %q, want interpolated /top/5", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	frag := fragment.JSON("news", fragment.WithRemote(srv.URL+"/top/{count}"))
	body, err := NewRemote(srv.Client(), zaptest.NewLogger(t)).Fetch(context.Background(), frag,
		compose.RenderContext{"count": "5"}, compose.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if body.String() != `{"ok":true}` {
		t.Errorf("Fetch() = %q, want response body", body.String())
	}
	if body.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q, want the response content type", body.ContentType())
	}
}

func TestRemote_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	frag := fragment.HTML("news", fragment.WithRemote(srv.URL))
	_, err := NewRemote(srv.Client(), zaptest.NewLogger(t)).Fetch(context.Background(), frag, nil, compose.FetchOptions{})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("Fetch() error = %v, want status failure", err)
	}
}

func TestRemote_MissingParam(t *testing.T) {
	frag := fragment.HTML("news", fragment.WithRemote("http://news.local/{section}"))

	_, err := NewRemote(nil, zaptest.NewLogger(t)).Fetch(context.Background(), frag, nil, compose.FetchOptions{})
	if err == nil || !strings.Contains(err.Error(), "section") {
		t.Fatalf("Fetch() error = %v, want unresolved parameter failure", err)
	}
}

func TestComposite_DispatchAndSoften(t *testing.T) {
	root := t.TempDir()
	comp := NewComposite(root, nil, zaptest.NewLogger(t))

	// inline dispatch
	body, err := comp.Fetch(context.Background(), fragment.HTML("greeter", fragment.WithInline("Hello")), nil, compose.FetchOptions{})
	if err != nil || body.String() != "Hello" {
		t.Fatalf("Fetch(inline) = %q, %v, want Hello", body.String(), err)
	}

	// optional fragment failure is softened into the missing-content message
	missing := fragment.HTML("gone", fragment.WithLocal("gone.html"),
		fragment.WithMissingMessage(fragment.Literal("placeholder")))
	body, err = comp.Fetch(context.Background(), missing, nil, compose.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch(optional missing) error = %v, want softened failure", err)
	}
	if body.String() != "placeholder" {
		t.Errorf("Fetch(optional missing) = %q, want missing-content message", body.String())
	}

	// required fragment failure propagates
	vital := fragment.HTML("vital", fragment.WithLocal("gone.html"), fragment.WithRequired())
	if _, err = comp.Fetch(context.Background(), vital, nil, compose.FetchOptions{}); err == nil {
		t.Fatal("Fetch(required missing) expected error")
	}
}

func TestComposite_BaseDefaultTemplate(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "home.html"), []byte("<html>home</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	comp := NewComposite(root, nil, zaptest.NewLogger(t))

	body, err := comp.Fetch(context.Background(), fragment.Base(), nil, compose.FetchOptions{Route: "home"})
	if err != nil {
		t.Fatalf("Fetch(base) error = %v", err)
	}
	if body.String() != "<html>home</html>" {
		t.Errorf("Fetch(base) = %q, want route default template", body.String())
	}
}

func TestComposite_NoSourceFatalForBase(t *testing.T) {
	comp := NewComposite("", nil, zaptest.NewLogger(t))

	_, err := comp.Fetch(context.Background(), fragment.Base(), nil, compose.FetchOptions{Route: "home"})
	if !errors.Is(err, ErrNoSource) {
		t.Fatalf("Fetch(base without root) error = %v, want ErrNoSource", err)
	}
}
