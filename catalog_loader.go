package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// stableListSchema describes `[{"version": "...", "stable": true}, ...]`,
// the shape of both the game and the installer version lists.
var stableListSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"version": map[string]any{"type": "string"},
			"stable":  map[string]any{"type": "boolean"},
		},
		"required": []string{"version", "stable"},
	},
}

// loaderCatalog serves providers whose download path is qualified by a
// loader and an installer version on top of the game version.
type loaderCatalog struct {
	provider Provider
	spec     ProviderSpec
	client   *http.Client
}

func (c *loaderCatalog) Provider() Provider {
	return c.provider
}

func (c *loaderCatalog) Versions(ctx context.Context, channel Channel) ([]VersionEntry, error) {
	url, err := renderEndpoint(c.spec.VersionsURL, c.spec, nil)
	if err != nil {
		return nil, err
	}

	all, err := c.stableList(ctx, url, c.spec.VersionsJSONPath)
	if err != nil {
		return nil, err
	}
	if channel == "" {
		return all, nil
	}

	var entries []VersionEntry
	for _, e := range all {
		if e.Channel == channel {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (c *loaderCatalog) Locate(ctx context.Context, entry VersionEntry) (Artifact, error) {
	loader, err := c.newestLoader(ctx, entry.ID)
	if err != nil {
		return Artifact{}, fmt.Errorf("resolve loader version: %w", err)
	}

	installer, err := c.stableInstaller(ctx)
	if err != nil {
		return Artifact{}, fmt.Errorf("resolve installer version: %w", err)
	}

	slog.Debug("resolved loader indirection",
		"game", entry.ID,
		"loader", loader,
		"installer", installer,
	)

	url, err := renderEndpoint(c.spec.DownloadURL, c.spec, map[string]any{
		"Version":   entry.ID,
		"Loader":    loader,
		"Installer": installer,
	})
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{URL: url}, nil
}

func (c *loaderCatalog) newestLoader(ctx context.Context, game string) (string, error) {
	url, err := renderEndpoint(c.spec.LoaderURL, c.spec, map[string]any{
		"Version": game,
	})
	if err != nil {
		return "", err
	}

	src, err := getJSON(ctx, c.client, url, nil)
	if err != nil {
		return "", err
	}

	versions, err := retrieveStrings(src, c.spec.LoaderJSONPath)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("%w: no loader versions for %s", ErrParse, game)
	}
	return FindNewestVersion(versions)
}

func (c *loaderCatalog) stableInstaller(ctx context.Context) (string, error) {
	url, err := renderEndpoint(c.spec.InstallerURL, c.spec, nil)
	if err != nil {
		return "", err
	}

	installers, err := c.stableList(ctx, url, c.spec.InstallerJSONPath)
	if err != nil {
		return "", err
	}
	for _, e := range installers {
		if e.Channel == ChannelStable {
			return e.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no stable installer version", ErrParse)
}

// stableList fetches a version list whose entries carry a stable flag.
func (c *loaderCatalog) stableList(ctx context.Context, url string, path string) ([]VersionEntry, error) {
	results, err := getJSONPages(ctx, c.client, url, stableListSchema, path)
	if err != nil {
		return nil, err
	}

	entries := make([]VersionEntry, 0, len(results))
	for _, result := range results {
		obj, ok := result.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected version entry: %v", ErrParse, result)
		}
		channel := ChannelUnstable
		if stable, _ := obj["stable"].(bool); stable {
			channel = ChannelStable
		}
		entries = append(entries, VersionEntry{
			ID:      stringField(obj, "version"),
			Channel: channel,
		})
	}
	return entries, nil
}
