package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/AsaiYusuke/jsonpath"
	"github.com/xeipuuv/gojsonschema"

	"go.cluttr.dev/setup-mc/internal/metaerr"
)

// Catalog is the remote version catalog of a provider.
type Catalog interface {
	Provider() Provider

	// Versions fetches the catalog. A non-empty channel restricts the
	// entries to that channel where the provider distinguishes channels.
	Versions(ctx context.Context, channel Channel) ([]VersionEntry, error)

	// Locate resolves a validated entry into its downloadable artifact.
	Locate(ctx context.Context, entry VersionEntry) (Artifact, error)
}

// Artifact is the located server binary of a version.
type Artifact struct {
	URL string
	// SHA1 is the hex encoded checksum published by the provider, if any.
	SHA1 string
}

// NewCatalog returns the catalog strategy of the given spec.
func NewCatalog(p Provider, spec ProviderSpec, client *http.Client) (Catalog, error) {
	if client == nil {
		client = defaultClient()
	}
	switch spec.Strategy {
	case StrategyFlat:
		return &flatCatalog{provider: p, spec: spec, client: client}, nil
	case StrategyManifest:
		return &manifestCatalog{provider: p, spec: spec, client: client}, nil
	case StrategyLoader:
		return &loaderCatalog{provider: p, spec: spec, client: client}, nil
	}
	return nil, fmt.Errorf("unknown strategy: %q", spec.Strategy)
}

// getJSON queries the `url` and decodes the response body. If `schema` is
// given, the document must validate against it.
func getJSON(ctx context.Context, client *http.Client, url string, schema map[string]any) (any, error) {
	src, _, err := fetchJSON(ctx, client, url, schema)
	return src, err
}

// getJSONPages queries the `url` and follows `rel="next"` links, collecting
// the results of the JSONPath `path` on every page in order.
func getJSONPages(ctx context.Context, client *http.Client, url string, schema map[string]any, path string) ([]any, error) {
	var results []any

	seen := make(map[string]bool)
	for url != "" && !seen[url] {
		seen[url] = true

		src, header, err := fetchJSON(ctx, client, url, schema)
		if err != nil {
			return nil, err
		}

		rs, err := retrieve(src, path)
		var notExist jsonpath.ErrorMemberNotExist
		if err != nil && (len(seen) == 1 || !errors.As(err, &notExist)) {
			// only follow-up pages may come back empty
			return nil, metaerr.WithMetadata(err, "url", url)
		}
		results = append(results, rs...)

		url = resolveLink(url, findNextLink(header.Values("Link")))
	}

	return results, nil
}

func fetchJSON(ctx context.Context, client *http.Client, url string, schema map[string]any) (any, http.Header, error) {
	slog.Debug("fetching document", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, metaerr.WithMetadata(fmt.Errorf("%w: %w", ErrNetwork, err), "url", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, nil, metaerr.WithMetadata(
			fmt.Errorf("%w: %d - %s", ErrNetwork, resp.StatusCode, http.StatusText(resp.StatusCode)),
			"url", url,
			"body", string(body),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, metaerr.WithMetadata(fmt.Errorf("%w: read response body: %w", ErrNetwork, err), "url", url)
	}

	var src any
	if err := json.Unmarshal(body, &src); err != nil {
		return nil, nil, metaerr.WithMetadata(fmt.Errorf("%w: unmarshal response body: %w", ErrNetwork, err), "url", url)
	}

	if schema != nil {
		if err := validateDocument(src, schema); err != nil {
			return nil, nil, metaerr.WithMetadata(err, "url", url)
		}
	}

	return src, resp.Header, nil
}

func findNextLink(headers []string) string {
	for _, raw := range headers {
		// Header values may be comma delimited sequences
		for _, header := range strings.Split(raw, ",") {
			var linkURL, linkRel string

			// Link header values have the form: <url>; rel="next"; foo="bar"
			for _, part := range strings.Split(header, ";") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}

				// <url>
				if part[0] == '<' && part[len(part)-1] == '>' {
					linkURL = strings.Trim(part, "<>")
					continue
				}

				// rel="next"
				keyval := strings.SplitN(part, "=", 2)
				if len(keyval) != 2 {
					continue
				} else if strings.ToLower(strings.TrimSpace(keyval[0])) == "rel" {
					linkRel = strings.Trim(strings.TrimSpace(keyval[1]), "\"")
				}
			}

			if strings.ToLower(linkRel) == "next" {
				return linkURL
			}
		}
	}
	return ""
}

// resolveLink resolves a possibly relative link against the page it was
// found on.
func resolveLink(page string, link string) string {
	if link == "" {
		return ""
	}
	base, err := neturl.Parse(page)
	if err != nil {
		return link
	}
	ref, err := neturl.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}

func validateDocument(src any, schema map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(src),
	)
	if err != nil {
		return fmt.Errorf("%w: validate document: %w", ErrParse, err)
	}
	if !result.Valid() {
		var errs strings.Builder
		for i, desc := range result.Errors() {
			if i > 0 {
				errs.WriteString("; ")
			}
			errs.WriteString(desc.String())
		}
		return fmt.Errorf("%w: unexpected document shape: %s", ErrParse, errs.String())
	}
	return nil
}

// retrieve evaluates the JSONPath `path` against `src`.
func retrieve(src any, path string) ([]any, error) {
	results, err := jsonpath.Retrieve(path, src)
	if err != nil {
		return nil, metaerr.WithMetadata(fmt.Errorf("%w: %w", ErrParse, err), "jsonpath", path)
	}
	return results, nil
}

// retrieveStrings evaluates `path` and returns the non-empty string results.
func retrieveStrings(src any, path string) ([]string, error) {
	results, err := retrieve(src, path)
	if err != nil {
		return nil, err
	}
	return stringResults(results, path)
}

// stringResults returns the non-empty strings of JSONPath `results`.
func stringResults(results []any, path string) ([]string, error) {
	values := make([]string, 0, len(results))
	for _, result := range results {
		s, ok := result.(string)
		if !ok {
			return nil, metaerr.WithMetadata(
				fmt.Errorf("%w: not a string: %v", ErrParse, result),
				"jsonpath", path,
			)
		}
		if s == "" {
			continue
		}
		values = append(values, s)
	}

	return values, nil
}

// retrieveString evaluates `path` and returns its first string result.
func retrieveString(src any, path string) (string, error) {
	values, err := retrieveStrings(src, path)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", metaerr.WithMetadata(fmt.Errorf("%w: no value", ErrParse), "jsonpath", path)
	}
	return values[0], nil
}

// stringField returns the string member `key` of a decoded JSON object.
func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func renderEndpoint(tmpl string, spec ProviderSpec, data map[string]any) (string, error) {
	if data == nil {
		data = make(map[string]any)
	}
	data["BaseURL"] = spec.BaseURL
	u, err := renderTemplate(tmpl, data)
	if err != nil {
		return "", metaerr.WithMetadata(fmt.Errorf("render url: %w", err), "template", tmpl)
	}
	return u, nil
}
