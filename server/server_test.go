package server_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nasa-jpl/golascan/server"
)

func TestReplyWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.fits")
	if err := os.WriteFile(path, []byte("SIMPLE"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := server.FileHandler(func() string { return path })

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/acquire/result", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	b, _ := io.ReadAll(w.Body)
	if string(b) != "SIMPLE" {
		t.Errorf("unexpected body %q", b)
	}

	w = httptest.NewRecorder()
	server.ReplyWithFile(w, httptest.NewRequest(http.MethodGet, "/", nil), path+".missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing file, got %d", w.Code)
	}
}
