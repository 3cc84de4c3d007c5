package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Provider is one of the supported server distributions. The numeric value
// is the index persisted in the install record.
type Provider int

const (
	ProviderPurpur Provider = iota + 1
	ProviderPaper
	ProviderVanilla
	ProviderFabric
)

var providers = []Provider{
	ProviderPurpur,
	ProviderPaper,
	ProviderVanilla,
	ProviderFabric,
}

func (p Provider) String() string {
	switch p {
	case ProviderPurpur:
		return "purpur"
	case ProviderPaper:
		return "paper"
	case ProviderVanilla:
		return "vanilla"
	case ProviderFabric:
		return "fabric"
	}
	return "provider(" + strconv.Itoa(int(p)) + ")"
}

// DisplayName returns the human readable distribution name.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderPurpur:
		return "PurpurMC"
	case ProviderPaper:
		return "PaperMC"
	case ProviderVanilla:
		return "Vanilla"
	case ProviderFabric:
		return "Fabric"
	}
	return p.String()
}

func (p Provider) Valid() bool {
	return p >= ProviderPurpur && p <= ProviderFabric
}

// VendorFlags reports whether the distribution benefits from Aikar's flags.
func (p Provider) VendorFlags() bool {
	return p == ProviderPurpur || p == ProviderPaper
}

// DefaultChannel is the channel fetched before any channel switch.
// The zero channel means no filtering.
func (p Provider) DefaultChannel() Channel {
	if p == ProviderVanilla {
		return ChannelRelease
	}
	return ""
}

// AlternateChannel is the channel the operator may switch to with the
// channel switch token, or the zero channel if there is none.
func (p Provider) AlternateChannel() Channel {
	if p == ProviderVanilla {
		return ChannelSnapshot
	}
	return ""
}

// ParseProvider accepts a provider index ("1".."4") or identifier.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		p := Provider(n)
		if !p.Valid() {
			return 0, fmt.Errorf("unknown provider index: %d", n)
		}
		return p, nil
	}
	for _, p := range providers {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown provider: %q", s)
}

// Strategy names the shape of a provider's catalog.
type Strategy string

const (
	StrategyFlat     Strategy = "flat"
	StrategyManifest Strategy = "manifest"
	StrategyLoader   Strategy = "loader"
)

// ProviderSpec holds the endpoint templates of a provider. Templates are
// rendered with text/template and may reference .BaseURL, .Version, .Loader
// and .Installer.
type ProviderSpec struct {
	BaseURL           string   `yaml:"baseUrl"`
	Strategy          Strategy `yaml:"strategy"`
	VersionsURL       string   `yaml:"versionsUrl"`
	VersionsJSONPath  string   `yaml:"versionsJsonPath"`
	DownloadURL       string   `yaml:"downloadUrl"`
	ServerJSONPath    string   `yaml:"serverJsonPath"`
	ChecksumJSONPath  string   `yaml:"checksumJsonPath"`
	LoaderURL         string   `yaml:"loaderUrl"`
	LoaderJSONPath    string   `yaml:"loaderJsonPath"`
	InstallerURL      string   `yaml:"installerUrl"`
	InstallerJSONPath string   `yaml:"installerJsonPath"`
}

var builtinProviderSpecs = map[Provider]ProviderSpec{
	ProviderPurpur: {
		BaseURL:          "https://api.purpurmc.org",
		Strategy:         StrategyFlat,
		VersionsURL:      "{{ .BaseURL }}/v2/purpur",
		VersionsJSONPath: "$.versions[*]",
		DownloadURL:      "{{ .BaseURL }}/v2/purpur/{{ .Version }}/latest/download",
	},
	ProviderPaper: {
		BaseURL:          "https://api.papermc.io",
		Strategy:         StrategyFlat,
		VersionsURL:      "{{ .BaseURL }}/v2/projects/paper",
		VersionsJSONPath: "$.versions[*]",
		DownloadURL:      "{{ .BaseURL }}/v2/projects/paper/{{ .Version }}/latest/download",
	},
	ProviderVanilla: {
		BaseURL:          "https://launchermeta.mojang.com",
		Strategy:         StrategyManifest,
		VersionsURL:      "{{ .BaseURL }}/mc/game/version_manifest.json",
		VersionsJSONPath: "$.versions[*]",
		ServerJSONPath:   "$.downloads.server.url",
		ChecksumJSONPath: "$.downloads.server.sha1",
	},
	ProviderFabric: {
		BaseURL:           "https://meta.fabricmc.net",
		Strategy:          StrategyLoader,
		VersionsURL:       "{{ .BaseURL }}/v2/versions/game",
		VersionsJSONPath:  "$[*]",
		LoaderURL:         "{{ .BaseURL }}/v2/versions/loader/{{ .Version }}",
		LoaderJSONPath:    "$..loader.version",
		InstallerURL:      "{{ .BaseURL }}/v2/versions/installer",
		InstallerJSONPath: "$[*]",
		DownloadURL:       "{{ .BaseURL }}/v2/versions/loader/{{ .Version }}/{{ .Loader }}/{{ .Installer }}",
	},
}

// ProviderSpecs returns the builtin specs with the configured overrides
// applied.
func ProviderSpecs(overrides map[string]ProviderOverride) (map[Provider]ProviderSpec, error) {
	specs := make(map[Provider]ProviderSpec, len(builtinProviderSpecs))
	for p, spec := range builtinProviderSpecs {
		specs[p] = spec
	}

	for name, o := range overrides {
		p, err := ParseProvider(name)
		if err != nil {
			return nil, err
		}
		spec, err := resolveProviderOverride(specs[p], o)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p, err)
		}
		specs[p] = spec
	}

	return specs, nil
}

func resolveProviderOverride(spec ProviderSpec, o ProviderOverride) (ProviderSpec, error) {
	switch {
	case o.String != nil:
		return overrideBaseURL(spec, *o.String)
	case o.Spec != nil:
		return mergeProviderSpec(spec, *o.Spec)
	}
	return ProviderSpec{}, fmt.Errorf("invalid provider config")
}

func overrideBaseURL(spec ProviderSpec, raw string) (ProviderSpec, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ProviderSpec{}, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ProviderSpec{}, fmt.Errorf("invalid base url: %s", raw)
	}
	spec.BaseURL = strings.TrimSuffix(raw, "/")
	return spec, nil
}

func mergeProviderSpec(spec ProviderSpec, o ProviderSpec) (ProviderSpec, error) {
	if o.BaseURL != "" {
		var err error
		if spec, err = overrideBaseURL(spec, o.BaseURL); err != nil {
			return ProviderSpec{}, err
		}
	}
	if o.Strategy != "" && o.Strategy != spec.Strategy {
		return ProviderSpec{}, fmt.Errorf("strategy cannot be changed: %s", o.Strategy)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&spec.VersionsURL, o.VersionsURL)
	set(&spec.VersionsJSONPath, o.VersionsJSONPath)
	set(&spec.DownloadURL, o.DownloadURL)
	set(&spec.ServerJSONPath, o.ServerJSONPath)
	set(&spec.ChecksumJSONPath, o.ChecksumJSONPath)
	set(&spec.LoaderURL, o.LoaderURL)
	set(&spec.LoaderJSONPath, o.LoaderJSONPath)
	set(&spec.InstallerURL, o.InstallerURL)
	set(&spec.InstallerJSONPath, o.InstallerJSONPath)

	return spec, nil
}
