package main

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestInstaller(t *testing.T, srv *httptest.Server, p Prompter) *Installer {
	specs := make(map[Provider]ProviderSpec, len(providers))
	for _, prov := range providers {
		specs[prov] = testSpec(prov, srv.URL)
	}
	return &Installer{
		Dir:      t.TempDir(),
		Specs:    specs,
		Client:   srv.Client(),
		Prompter: p,
	}
}

func TestInstallFlat(t *testing.T) {
	var downloaded atomic.Value

	mux, srv := setupServer(t)
	mux.HandleFunc("GET /v2/purpur", serveJSON(map[string]any{
		"project":  "purpur",
		"versions": []string{"1.0", "1.1"},
	}))
	mux.HandleFunc("GET /v2/purpur/{version}/latest/download", func(w http.ResponseWriter, r *http.Request) {
		downloaded.Store(r.URL.Path)
		_, _ = w.Write([]byte("purpur " + r.PathValue("version")))
	})

	prompter := &scriptedPrompter{t: t, texts: []string{"1.1"}}
	in := newTestInstaller(t, srv, prompter)

	rec, err := in.Install(context.Background(), ProviderPurpur, "")
	if err != nil {
		t.Fatalf("Install() failed: %v", err)
	}
	if d := cmp.Diff(InstallRecord{Version: "1.1", Provider: ProviderPurpur}, rec); d != "" {
		t.Errorf("Install() mismatch (-want/+got): %v", d)
	}
	if path, _ := downloaded.Load().(string); path != "/v2/purpur/1.1/latest/download" {
		t.Errorf("downloaded %q, want %q", path, "/v2/purpur/1.1/latest/download")
	}

	info, err := os.ReadFile(filepath.Join(in.Dir, RecordName))
	if err != nil {
		t.Fatal(err)
	}
	if want := "Game Version: 1.1\nSoftware: 1"; string(info) != want {
		t.Errorf("record = %q, want %q", info, want)
	}

	jar, err := os.ReadFile(filepath.Join(in.Dir, ArtifactName))
	if err != nil {
		t.Fatal(err)
	}
	if string(jar) != "purpur 1.1" {
		t.Errorf("artifact = %q, want %q", jar, "purpur 1.1")
	}
}

func TestInstallInvalidVersion(t *testing.T) {
	var downloads atomic.Int32

	mux, srv := setupServer(t)
	mux.HandleFunc("GET /v2/projects/paper", serveJSON(map[string]any{
		"versions": []string{"1.20.3", "1.20.4"},
	}))
	mux.HandleFunc("GET /v2/projects/paper/{version}/latest/download", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
	})

	in := newTestInstaller(t, srv, &scriptedPrompter{t: t})

	_, err := in.Install(context.Background(), ProviderPaper, "1.21")
	if !errors.Is(err, ErrInvalidVersion) {
		t.Fatalf("Install() error = %v, want %v", err, ErrInvalidVersion)
	}
	if n := downloads.Load(); n != 0 {
		t.Errorf("downloaded %d times, want 0", n)
	}
	for _, name := range []string{RecordName, ArtifactName} {
		if _, err := os.Stat(filepath.Join(in.Dir, name)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s exists after failed install", name)
		}
	}
}

func TestInstallChannelSwitch(t *testing.T) {
	var manifestFetches atomic.Int32
	payload := []byte("snapshot server")
	sum := sha1.Sum(payload)

	mux, srv := setupServer(t)
	mux.HandleFunc("GET /mc/game/version_manifest.json", func(w http.ResponseWriter, r *http.Request) {
		manifestFetches.Add(1)
		serveJSON(vanillaManifest(srv.URL))(w, r)
	})
	mux.HandleFunc("GET /v1/packages/23w31a.json", func(w http.ResponseWriter, r *http.Request) {
		serveJSON(map[string]any{
			"downloads": map[string]any{
				"server": map[string]any{
					"url":  srv.URL + "/objects/23w31a/server.jar",
					"sha1": hex.EncodeToString(sum[:]),
				},
			},
		})(w, r)
	})
	mux.HandleFunc("GET /objects/23w31a/server.jar", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	})

	tests := []struct {
		testName string
		texts    []string
		want     InstallRecord
		wantErr  error
	}{
		{
			testName: "snapshot",
			texts:    []string{ChannelSwitchToken, "23w31a"},
			want:     InstallRecord{Version: "23w31a", Provider: ProviderVanilla},
		},
		{
			testName: "release is not a snapshot",
			texts:    []string{ChannelSwitchToken, "1.20.1"},
			wantErr:  ErrInvalidVersion,
		},
		{
			testName: "token only switches once",
			texts:    []string{ChannelSwitchToken, ChannelSwitchToken},
			wantErr:  ErrInvalidVersion,
		},
		{
			testName: "snapshot without switch",
			texts:    []string{"23w31a"},
			wantErr:  ErrInvalidVersion,
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			manifestFetches.Store(0)
			prompter := &scriptedPrompter{t: t, texts: tt.texts}
			in := newTestInstaller(t, srv, prompter)

			got, err := in.Install(context.Background(), ProviderVanilla, "")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Install() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Install() failed: %v", err)
			}
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("Install() mismatch (-want/+got): %v", d)
			}
			if n := manifestFetches.Load(); n != 2 {
				t.Errorf("manifest fetched %d times, want 2", n)
			}
			want := []string{
				"Enter a version or press s to show snapshot versions",
				"Enter a version",
			}
			if d := cmp.Diff(want, prompter.questions); d != "" {
				t.Errorf("questions mismatch (-want/+got): %v", d)
			}
		})
	}
}

func TestInstallLoader(t *testing.T) {
	mux, srv := setupServer(t)
	mux.HandleFunc("GET /v2/versions/game", serveJSON([]map[string]any{
		{"version": "1.20", "stable": true},
	}))
	mux.HandleFunc("GET /v2/versions/loader/1.20", serveJSON(map[string]any{
		"loader": map[string]any{"version": "0.15.3"},
	}))
	mux.HandleFunc("GET /v2/versions/installer", serveJSON([]map[string]any{
		{"version": "1.0.1", "stable": true},
	}))
	mux.HandleFunc("GET /v2/versions/loader/1.20/0.15.3/1.0.1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fabric"))
	})

	in := newTestInstaller(t, srv, &scriptedPrompter{t: t})

	rec, err := in.Install(context.Background(), ProviderFabric, "1.20")
	if err != nil {
		t.Fatalf("Install() failed: %v", err)
	}
	if d := cmp.Diff(InstallRecord{Version: "1.20", Provider: ProviderFabric}, rec); d != "" {
		t.Errorf("Install() mismatch (-want/+got): %v", d)
	}
	got, err := ReadRecord(in.Dir)
	if err != nil {
		t.Fatalf("ReadRecord() failed: %v", err)
	}
	if d := cmp.Diff(rec, got); d != "" {
		t.Errorf("ReadRecord() mismatch (-want/+got): %v", d)
	}
}

func TestInstallDownloadFailure(t *testing.T) {
	mux, srv := setupServer(t)
	mux.HandleFunc("GET /v2/purpur", serveJSON(map[string]any{
		"versions": []string{"1.0"},
	}))
	mux.HandleFunc("GET /v2/purpur/1.0/latest/download", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	in := newTestInstaller(t, srv, &scriptedPrompter{t: t})

	_, err := in.Install(context.Background(), ProviderPurpur, "1.0")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Install() error = %v, want %v", err, ErrNetwork)
	}
	if _, err := os.Stat(filepath.Join(in.Dir, RecordName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("install record written after failed download")
	}
}

// syncBuffer is written to by spinner goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInstallerFetchResolvesSpinner(t *testing.T) {
	mux, srv := setupServer(t)
	mux.HandleFunc("GET /v2/purpur", serveJSON(map[string]any{
		"versions": []string{"1.0"},
	}))

	var out syncBuffer
	in := newTestInstaller(t, srv, &scriptedPrompter{t: t})
	in.Output = &out

	catalog, err := in.Catalog(ProviderPurpur)
	if err != nil {
		t.Fatalf("Catalog() failed: %v", err)
	}
	if _, err := in.fetch(context.Background(), catalog, ""); err != nil {
		t.Fatalf("fetch() failed: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "Fetched PurpurMC versions") {
		t.Errorf("fetch() output = %q, want success message", got)
	}
}

func TestInstallerListVersions(t *testing.T) {
	tests := []struct {
		provider Provider
		entries  []VersionEntry
		want     string
	}{
		{
			provider: ProviderVanilla,
			entries: []VersionEntry{
				{ID: "1.20.1", Channel: ChannelRelease},
				{ID: "1.20", Channel: ChannelRelease},
				{ID: "1.19.4", Channel: ChannelRelease},
			},
			want: "Available versions for Vanilla:\n1.19.4\t1.20\t1.20.1\n",
		},
		{
			provider: ProviderPaper,
			entries: []VersionEntry{
				{ID: "1.20.3", Channel: ChannelRelease},
				{ID: "1.20.4", Channel: ChannelRelease},
			},
			want: "Available versions for PaperMC:\n1.20.3\t1.20.4\n",
		},
		{
			provider: ProviderFabric,
			entries: []VersionEntry{
				{ID: "1.20.1", Channel: ChannelStable},
				{ID: "23w31a", Channel: ChannelUnstable},
				{ID: "1.20", Channel: ChannelStable},
			},
			want: "Available versions for Fabric:\n1.20.1\t1.20\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.provider.String(), func(t *testing.T) {
			var out bytes.Buffer
			in := &Installer{Output: &out}
			in.listVersions(tt.provider, tt.entries)
			if d := cmp.Diff(tt.want, out.String()); d != "" {
				t.Errorf("listVersions() mismatch (-want/+got): %v", d)
			}
		})
	}
}
