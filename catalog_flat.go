package main

import (
	"context"
	"net/http"
)

// flatCatalogSchema describes `{"versions": ["1.20.1", ...]}`.
var flatCatalogSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"versions": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{"versions"},
}

// flatCatalog serves providers that publish a plain list of versions with a
// "latest build" download endpoint per version. The list may be split into
// pages linked by `rel="next"`.
type flatCatalog struct {
	provider Provider
	spec     ProviderSpec
	client   *http.Client
}

func (c *flatCatalog) Provider() Provider {
	return c.provider
}

func (c *flatCatalog) Versions(ctx context.Context, _ Channel) ([]VersionEntry, error) {
	url, err := renderEndpoint(c.spec.VersionsURL, c.spec, nil)
	if err != nil {
		return nil, err
	}

	results, err := getJSONPages(ctx, c.client, url, flatCatalogSchema, c.spec.VersionsJSONPath)
	if err != nil {
		return nil, err
	}

	ids, err := stringResults(results, c.spec.VersionsJSONPath)
	if err != nil {
		return nil, err
	}

	entries := make([]VersionEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, VersionEntry{ID: id, Channel: ChannelRelease})
	}
	return entries, nil
}

func (c *flatCatalog) Locate(_ context.Context, entry VersionEntry) (Artifact, error) {
	url, err := renderEndpoint(c.spec.DownloadURL, c.spec, map[string]any{
		"Version": entry.ID,
	})
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{URL: url}, nil
}
