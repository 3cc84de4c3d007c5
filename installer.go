package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/pterm/pterm"

	"go.cluttr.dev/setup-mc/internal/metaerr"
)

// Installer runs the download pipeline of a provider into an installation
// directory.
type Installer struct {
	// Dir is the installation directory.
	Dir string

	Specs    map[Provider]ProviderSpec
	Client   *http.Client
	Prompter Prompter

	// Output receives the version listings, spinners and the download
	// progress. Nil discards them.
	Output io.Writer
}

func (in *Installer) output() io.Writer {
	if in.Output == nil {
		return io.Discard
	}
	return in.Output
}

func (in *Installer) client() *http.Client {
	if in.Client == nil {
		return defaultClient()
	}
	return in.Client
}

func (in *Installer) spec(p Provider) (ProviderSpec, bool) {
	spec, ok := in.Specs[p]
	if !ok {
		spec, ok = builtinProviderSpecs[p]
	}
	return spec, ok
}

// Catalog returns the catalog strategy of the provider.
func (in *Installer) Catalog(p Provider) (Catalog, error) {
	spec, ok := in.spec(p)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %d", p)
	}
	return NewCatalog(p, spec, in.client())
}

// Install resolves `candidate` against the provider's catalog, downloads
// the artifact and writes the install record. If `candidate` is empty the
// operator is asked for a version.
func (in *Installer) Install(ctx context.Context, p Provider, candidate string) (InstallRecord, error) {
	catalog, err := in.Catalog(p)
	if err != nil {
		return InstallRecord{}, err
	}

	entry, err := in.resolve(ctx, catalog, candidate)
	if err != nil {
		return InstallRecord{}, err
	}

	artifact, err := in.locate(ctx, catalog, entry)
	if err != nil {
		return InstallRecord{}, metaerr.WithMetadata(
			fmt.Errorf("locate artifact: %w", err),
			"provider", p.String(), "version", entry.ID,
		)
	}

	data, err := Download(ctx, in.client(), artifact.URL, in.output())
	if err != nil {
		return InstallRecord{}, fmt.Errorf("download artifact: %w", err)
	}

	path, err := PersistArtifact(in.Dir, data, artifact.SHA1)
	if err != nil {
		return InstallRecord{}, err
	}
	slog.Info("installed artifact", "provider", p.String(), "version", entry.ID, "path", path)

	rec := InstallRecord{Version: entry.ID, Provider: p}
	if err := WriteRecord(in.Dir, rec); err != nil {
		return InstallRecord{}, err
	}

	return rec, nil
}

// resolve fetches the catalog and validates the candidate against it,
// switching to the alternate channel on request.
func (in *Installer) resolve(ctx context.Context, catalog Catalog, candidate string) (VersionEntry, error) {
	p := catalog.Provider()

	entries, err := in.fetch(ctx, catalog, p.DefaultChannel())
	if err != nil {
		return VersionEntry{}, err
	}

	alternate := p.AlternateChannel()

	if candidate == "" {
		in.listVersions(p, entries)
		question := "Enter a version"
		if alternate != "" {
			question = fmt.Sprintf("Enter a version or press %s to show %s versions", ChannelSwitchToken, alternate)
		}
		if candidate, err = in.Prompter.Text(question); err != nil {
			return VersionEntry{}, err
		}
	}

	entry, err := ValidateVersion(entries, candidate, alternate != "")
	if !errors.Is(err, ErrChannelSwitch) {
		return entry, err
	}

	slog.Debug("switching channel", "provider", p.String(), "channel", alternate)
	entries, err = in.fetch(ctx, catalog, alternate)
	if err != nil {
		return VersionEntry{}, err
	}
	in.listVersions(p, entries)
	if candidate, err = in.Prompter.Text("Enter a version"); err != nil {
		return VersionEntry{}, err
	}
	return ValidateVersion(entries, candidate, false)
}

func (in *Installer) fetch(ctx context.Context, catalog Catalog, channel Channel) ([]VersionEntry, error) {
	p := catalog.Provider()

	spinner, _ := pterm.DefaultSpinner.WithWriter(in.output()).Start("Fetching ", p.DisplayName(), " versions")
	entries, err := catalog.Versions(ctx, channel)
	if err != nil {
		if spinner != nil {
			spinner.Fail("Failed to fetch ", p.DisplayName(), " versions")
		}
		return nil, metaerr.WithMetadata(fmt.Errorf("fetch catalog: %w", err), "provider", p.String())
	}
	if spinner != nil {
		spinner.Success("Fetched ", p.DisplayName(), " versions")
	}

	slog.Debug("fetched catalog", "provider", p.String(), "channel", string(channel), "versions", len(entries))
	return entries, nil
}

func (in *Installer) locate(ctx context.Context, catalog Catalog, entry VersionEntry) (Artifact, error) {
	spinner, _ := pterm.DefaultSpinner.WithWriter(in.output()).Start("Locating ", catalog.Provider().DisplayName(), " ", entry.ID)
	artifact, err := catalog.Locate(ctx, entry)
	if spinner != nil {
		if err != nil {
			spinner.Fail()
		} else {
			spinner.Success()
		}
	}
	return artifact, err
}

// listVersions prints the listed versions oldest first. Manifests list the
// newest version first.
func (in *Installer) listVersions(p Provider, entries []VersionEntry) {
	versions := ListedVersions(entries)
	if spec, _ := in.spec(p); spec.Strategy == StrategyManifest {
		slices.Reverse(versions)
	}

	w := in.output()
	_, _ = fmt.Fprintf(w, "Available versions for %s:\n", p.DisplayName())
	_, _ = fmt.Fprintln(w, strings.Join(versions, "\t"))
}
