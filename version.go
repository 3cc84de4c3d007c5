package main

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Channel is the release maturity of a catalog entry.
type Channel string

const (
	ChannelRelease  Channel = "release"
	ChannelSnapshot Channel = "snapshot"
	ChannelStable   Channel = "stable"
	ChannelUnstable Channel = "unstable"
)

// ChannelSwitchToken is the reserved input that asks for the alternate
// channel of a provider.
const ChannelSwitchToken = "s"

// VersionEntry is one installable version of a provider catalog.
type VersionEntry struct {
	ID      string
	Channel Channel
	// Ref is the reference needed by a further dereference hop, e.g. the
	// per-version manifest url.
	Ref string
}

// ValidateVersion returns the entry of `entries` whose identifier equals
// `candidate`.
// If `allowSwitch` is set and the candidate is the channel switch token,
// ErrChannelSwitch is returned instead.
func ValidateVersion(entries []VersionEntry, candidate string, allowSwitch bool) (VersionEntry, error) {
	for _, e := range entries {
		if e.ID == candidate {
			return e, nil
		}
	}
	if allowSwitch && candidate == ChannelSwitchToken {
		return VersionEntry{}, ErrChannelSwitch
	}
	return VersionEntry{}, fmt.Errorf("%w: %q", ErrInvalidVersion, candidate)
}

// ListedVersions returns the identifiers shown to the operator.
// Unstable entries are accepted by ValidateVersion but not listed.
func ListedVersions(entries []VersionEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Channel == ChannelUnstable {
			continue
		}
		ids = append(ids, e.ID)
	}
	return ids
}

// FindNewestVersion returns the highest semantic version of `versions`.
// Values that are no semantic versions are ignored; if none parses, the
// first value is returned as-is.
func FindNewestVersion(versions []string) (string, error) {
	if len(versions) == 0 {
		return "", fmt.Errorf("no versions")
	}

	vs := make([]*semver.Version, 0, len(versions))
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		vs = append(vs, v)
	}
	if len(vs) == 0 {
		return versions[0], nil
	}

	sort.Sort(sort.Reverse(semver.Collection(vs)))
	return vs[0].Original(), nil
}
