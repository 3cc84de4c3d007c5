package main

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("jar"), 4096)

	mux, srv := setupServer(t)
	mux.HandleFunc("GET /server.jar", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})
	mux.HandleFunc("GET /gone.jar", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	var progress bytes.Buffer
	got, err := Download(context.Background(), srv.Client(), srv.URL+"/server.jar", &progress)
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Download() returned %d bytes, want %d", len(got), len(payload))
	}

	_, err = Download(context.Background(), srv.Client(), srv.URL+"/gone.jar", nil)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Download() error = %v, want %v", err, ErrNetwork)
	}
}

func TestPersistArtifact(t *testing.T) {
	payload := []byte("new server build")
	sum := sha1.Sum(payload)

	tests := []struct {
		testName string
		existing []byte
		sha1sum  string
		wantErr  bool
	}{
		{
			testName: "fresh",
		},
		{
			testName: "overwrite",
			existing: []byte("old server build that is longer"),
		},
		{
			testName: "checksum",
			sha1sum:  hex.EncodeToString(sum[:]),
		},
		{
			testName: "checksum mismatch",
			sha1sum:  "0000000000000000000000000000000000000000",
			wantErr:  true,
		},
		{
			testName: "checksum mismatch keeps existing",
			existing: []byte("old server build"),
			sha1sum:  "0000000000000000000000000000000000000000",
			wantErr:  true,
		},
		{
			testName: "malformed checksum",
			sha1sum:  "not hex",
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			dir := t.TempDir()
			target := filepath.Join(dir, ArtifactName)
			if tt.existing != nil {
				if err := os.WriteFile(target, tt.existing, 0o644); err != nil {
					t.Fatal(err)
				}
			}

			path, err := PersistArtifact(dir, payload, tt.sha1sum)
			if tt.wantErr {
				if err == nil {
					t.Fatal("PersistArtifact() succeeded unexpectedly")
				}
				got, readErr := os.ReadFile(target)
				switch {
				case tt.existing == nil && readErr == nil:
					t.Errorf("artifact left behind: %q", got)
				case tt.existing != nil && !bytes.Equal(got, tt.existing):
					t.Errorf("artifact = %q, want %q", got, tt.existing)
				}
				return
			}
			if err != nil {
				t.Fatalf("PersistArtifact() failed: %v", err)
			}
			if path != target {
				t.Errorf("PersistArtifact() = %v, want %v", path, target)
			}
			got, err := os.ReadFile(target)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("artifact = %q, want %q", got, payload)
			}
		})
	}
}
