package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecordRoundtrip(t *testing.T) {
	dir := t.TempDir()
	rec := InstallRecord{Version: "1.20.1", Provider: ProviderVanilla}

	if err := WriteRecord(dir, rec); err != nil {
		t.Fatalf("WriteRecord() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, RecordName))
	if err != nil {
		t.Fatal(err)
	}
	if want := "Game Version: 1.20.1\nSoftware: 3"; string(data) != want {
		t.Errorf("record = %q, want %q", data, want)
	}

	got, err := ReadRecord(dir)
	if err != nil {
		t.Fatalf("ReadRecord() failed: %v", err)
	}
	if d := cmp.Diff(rec, got); d != "" {
		t.Errorf("ReadRecord() mismatch (-want/+got): %v", d)
	}
}

func TestWriteRecordInvalid(t *testing.T) {
	tests := []struct {
		testName string
		rec      InstallRecord
	}{
		{testName: "no version", rec: InstallRecord{Provider: ProviderPaper}},
		{testName: "no provider", rec: InstallRecord{Version: "1.20.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			if err := WriteRecord(t.TempDir(), tt.rec); err == nil {
				t.Fatal("WriteRecord() succeeded unexpectedly")
			}
		})
	}
}

func TestReadRecord(t *testing.T) {
	tests := []struct {
		testName string
		content  string
		want     InstallRecord
		wantErr  error
	}{
		{
			testName: "trailing newline",
			content:  "Game Version: 1.20.4\nSoftware: 2\n",
			want:     InstallRecord{Version: "1.20.4", Provider: ProviderPaper},
		},
		{
			testName: "crlf",
			content:  "Game Version: 23w31a\r\nSoftware: 4\r\n",
			want:     InstallRecord{Version: "23w31a", Provider: ProviderFabric},
		},
		{
			testName: "missing provider",
			content:  "Game Version: 1.20.4",
			wantErr:  ErrParse,
		},
		{
			testName: "missing version",
			content:  "Software: 1",
			wantErr:  ErrParse,
		},
		{
			testName: "provider out of range",
			content:  "Game Version: 1.20.4\nSoftware: 7",
			wantErr:  ErrParse,
		},
		{
			testName: "provider not a number",
			content:  "Game Version: 1.20.4\nSoftware: paper",
			wantErr:  ErrParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.testName, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, RecordName), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			got, err := ReadRecord(dir)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ReadRecord() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadRecord() failed: %v", err)
			}
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("ReadRecord() mismatch (-want/+got): %v", d)
			}
		})
	}
}

func TestReadRecordMissing(t *testing.T) {
	_, err := ReadRecord(t.TempDir())
	if !errors.Is(err, ErrFileSystem) {
		t.Errorf("ReadRecord() error = %v, want %v", err, ErrFileSystem)
	}
}
