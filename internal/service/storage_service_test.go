package service

import (
	"context"
	"errors"
	"math_quest_backend/internal/config"
	"math_quest_backend/internal/util"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIllustrationKey(t *testing.T) {
	tests := []struct {
		filename string
		wantExt  string
		wantErr  bool
	}{
		{"triangle.PNG", ".png", false},
		{"graph.jpeg", ".jpeg", false},
		{"notes.pdf", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		key, err := IllustrationKey("pythagorean_theorem", tt.filename)
		if tt.wantErr {
			if !errors.Is(err, util.ErrUnsupportedImageType) {
				t.Errorf("IllustrationKey(%q) error = %v", tt.filename, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("IllustrationKey(%q): %v", tt.filename, err)
		}
		if !strings.HasPrefix(key, "illustrations/pythagorean_theorem/") || !strings.HasSuffix(key, tt.wantExt) {
			t.Errorf("key = %q", key)
		}
	}
}

func TestLocalStorageRoundTrip(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Type = util.StorageLocal
	cfg.Storage.LocalPath = t.TempDir()
	svc := NewStorageService(cfg)

	url, err := svc.Upload(context.Background(), "illustrations/x/a.png", strings.NewReader("png"), 3, "image/png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "/uploads/illustrations/x/a.png" {
		t.Errorf("url = %q", url)
	}
	stored := filepath.Join(cfg.Storage.LocalPath, "illustrations", "x", "a.png")
	if data, err := os.ReadFile(stored); err != nil || string(data) != "png" {
		t.Fatalf("stored file = %q, %v", data, err)
	}

	if err := svc.Delete(context.Background(), "illustrations/x/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Errorf("file still exists: %v", err)
	}
}
