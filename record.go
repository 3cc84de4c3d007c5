package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RecordName is the file name of the install record.
const RecordName = "info.txt"

const (
	recordVersionKey  = "Game Version"
	recordProviderKey = "Software"
)

// InstallRecord pairs the installed version with the provider whose artifact
// is on disk.
type InstallRecord struct {
	Version  string
	Provider Provider
}

func (r InstallRecord) String() string {
	return fmt.Sprintf("%s: %s\n%s: %d", recordVersionKey, r.Version, recordProviderKey, int(r.Provider))
}

// WriteRecord persists the record into `dir`, replacing an existing one.
func WriteRecord(dir string, rec InstallRecord) error {
	if rec.Version == "" || !rec.Provider.Valid() {
		return fmt.Errorf("invalid install record: %+v", rec)
	}
	name := filepath.Join(dir, RecordName)
	if err := os.WriteFile(name, []byte(rec.String()), 0o644); err != nil {
		return fmt.Errorf("%w: write install record: %w", ErrFileSystem, err)
	}
	return nil
}

// ReadRecord reads the install record from `dir`.
func ReadRecord(dir string) (InstallRecord, error) {
	name := filepath.Join(dir, RecordName)
	data, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return InstallRecord{}, fmt.Errorf("%w: no install record in %s, install a server first", ErrFileSystem, dir)
	} else if err != nil {
		return InstallRecord{}, fmt.Errorf("%w: read install record: %w", ErrFileSystem, err)
	}
	return parseRecord(data)
}

func parseRecord(data []byte) (InstallRecord, error) {
	var (
		rec         InstallRecord
		hasProvider bool
	)

	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		key, value, ok := strings.Cut(s.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case recordVersionKey:
			rec.Version = value
		case recordProviderKey:
			n, err := strconv.Atoi(value)
			if err != nil {
				return InstallRecord{}, fmt.Errorf("%w: install record: invalid provider %q", ErrParse, value)
			}
			rec.Provider = Provider(n)
			hasProvider = true
		}
	}
	if err := s.Err(); err != nil {
		return InstallRecord{}, fmt.Errorf("%w: install record: %w", ErrParse, err)
	}

	switch {
	case rec.Version == "":
		return InstallRecord{}, fmt.Errorf("%w: install record: missing %s", ErrParse, recordVersionKey)
	case !hasProvider:
		return InstallRecord{}, fmt.Errorf("%w: install record: missing %s", ErrParse, recordProviderKey)
	case !rec.Provider.Valid():
		return InstallRecord{}, fmt.Errorf("%w: install record: unknown provider %d", ErrParse, rec.Provider)
	}
	return rec, nil
}
