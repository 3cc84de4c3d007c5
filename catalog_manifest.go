package main

import (
	"context"
	"fmt"
	"net/http"
)

// versionManifestSchema describes the launcher manifest listing every game
// version with a link to its own manifest.
var versionManifestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"versions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":   map[string]any{"type": "string"},
					"type": map[string]any{"type": "string"},
					"url":  map[string]any{"type": "string"},
				},
				"required": []string{"id", "type", "url"},
			},
		},
	},
	"required": []string{"versions"},
}

// serverManifestSchema describes the part of a per-version manifest that
// points to the server binary.
var serverManifestSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"downloads": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"server": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"url":  map[string]any{"type": "string"},
						"sha1": map[string]any{"type": "string"},
					},
					"required": []string{"url"},
				},
			},
			"required": []string{"server"},
		},
	},
	"required": []string{"downloads"},
}

// manifestCatalog serves providers whose catalog is a manifest of
// per-version manifests, partitioned into release and snapshot channels.
type manifestCatalog struct {
	provider Provider
	spec     ProviderSpec
	client   *http.Client
}

func (c *manifestCatalog) Provider() Provider {
	return c.provider
}

func (c *manifestCatalog) Versions(ctx context.Context, channel Channel) ([]VersionEntry, error) {
	if channel == "" {
		channel = ChannelRelease
	}

	url, err := renderEndpoint(c.spec.VersionsURL, c.spec, nil)
	if err != nil {
		return nil, err
	}

	results, err := getJSONPages(ctx, c.client, url, versionManifestSchema, c.spec.VersionsJSONPath)
	if err != nil {
		return nil, err
	}

	var entries []VersionEntry
	for _, result := range results {
		obj, ok := result.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected version entry: %v", ErrParse, result)
		}
		if Channel(stringField(obj, "type")) != channel {
			continue
		}
		entries = append(entries, VersionEntry{
			ID:      stringField(obj, "id"),
			Channel: channel,
			Ref:     stringField(obj, "url"),
		})
	}
	return entries, nil
}

func (c *manifestCatalog) Locate(ctx context.Context, entry VersionEntry) (Artifact, error) {
	if entry.Ref == "" {
		return Artifact{}, fmt.Errorf("%w: missing manifest url for %s", ErrParse, entry.ID)
	}

	src, err := getJSON(ctx, c.client, entry.Ref, serverManifestSchema)
	if err != nil {
		return Artifact{}, fmt.Errorf("fetch version manifest: %w", err)
	}

	url, err := retrieveString(src, c.spec.ServerJSONPath)
	if err != nil {
		return Artifact{}, err
	}

	artifact := Artifact{URL: url}
	if c.spec.ChecksumJSONPath != "" {
		// the checksum is optional
		if sum, err := retrieveString(src, c.spec.ChecksumJSONPath); err == nil {
			artifact.SHA1 = sum
		}
	}
	return artifact, nil
}
