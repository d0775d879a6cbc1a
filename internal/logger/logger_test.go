package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loykin/deployr/internal/config"
)

func TestWriterNilWithoutPath(t *testing.T) {
	if w := Writer(nil); w != nil {
		t.Fatalf("expected nil writer for nil config")
	}
	if w := Writer(&config.LogConfig{}); w != nil {
		t.Fatalf("expected nil writer for empty path")
	}
}

func TestWriterAppendsToFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "ops.log")
	w := Writer(&config.LogConfig{Path: p})
	if w == nil {
		t.Fatalf("expected writer")
	}
	if _, err := w.Write([]byte("pushed tree to bothost\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "pushed tree") {
		t.Fatalf("log content missing: %q", string(b))
	}
}

func TestValOr(t *testing.T) {
	if valOr(0, 9) != 9 || valOr(-1, 9) != 9 || valOr(4, 9) != 4 {
		t.Fatalf("valOr defaults broken")
	}
}
