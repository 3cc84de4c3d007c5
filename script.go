package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// RunMode selects how the launch script starts the server.
type RunMode int

const (
	RunForeground RunMode = iota
	// RunSession starts the server inside a detached tmux session.
	RunSession
)

// Platform selects the script flavour.
type Platform string

const (
	PlatformUnix    Platform = "unix"
	PlatformWindows Platform = "windows"
)

// CurrentPlatform returns the platform of the running process.
func CurrentPlatform() Platform {
	if runtime.GOOS == "windows" {
		return PlatformWindows
	}
	return PlatformUnix
}

const sessionName = "mc"

// aikarsFlags are the G1 tuning flags from https://mcflags.emc.gs.
// The order is significant.
var aikarsFlags = []string{
	"-XX:+UseG1GC",
	"-XX:+ParallelRefProcEnabled",
	"-XX:MaxGCPauseMillis=200",
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+DisableExplicitGC",
	"-XX:+AlwaysPreTouch",
	"-XX:G1NewSizePercent=30",
	"-XX:G1MaxNewSizePercent=40",
	"-XX:G1HeapRegionSize=8M",
	"-XX:G1ReservePercent=20",
	"-XX:G1HeapWastePercent=5",
	"-XX:G1MixedGCCountTarget=4",
	"-XX:InitiatingHeapOccupancyPercent=15",
	"-XX:G1MixedGCLiveThresholdPercent=90",
	"-XX:G1RSetUpdatingPauseTimePercent=5",
	"-XX:SurvivorRatio=32",
	"-XX:+PerfDisableSharedMem",
	"-Dusing.aikars.flags=https://mcflags.emc.gs",
	"-XX:MaxTenuringThreshold=1",
}

// LaunchConfig holds the runtime preferences of the launch script.
type LaunchConfig struct {
	HeapGigabytes int
	VendorFlags   bool
	RunMode       RunMode
	Platform      Platform
}

// LaunchScript is a generated start script.
type LaunchScript struct {
	Name       string
	Text       string
	Executable bool
}

// JVMArgs returns the java arguments for the given record and config.
func JVMArgs(rec InstallRecord, cfg LaunchConfig) []string {
	args := []string{
		"-Xmx" + strconv.Itoa(cfg.HeapGigabytes) + "G",
		"-Xms512M",
	}
	if cfg.VendorFlags && rec.Provider.VendorFlags() {
		args = append(args, aikarsFlags...)
	}
	return append(args, "-jar", ArtifactName, "nogui")
}

// BuildScript renders the launch script.
func BuildScript(rec InstallRecord, cfg LaunchConfig) (LaunchScript, error) {
	if cfg.HeapGigabytes < 1 {
		return LaunchScript{}, fmt.Errorf("invalid heap size: %dG", cfg.HeapGigabytes)
	}
	if !rec.Provider.Valid() {
		return LaunchScript{}, fmt.Errorf("unknown provider: %d", rec.Provider)
	}

	java := "java " + strings.Join(JVMArgs(rec, cfg), " ")

	if cfg.Platform == PlatformWindows {
		return LaunchScript{
			Name: "start.bat",
			Text: java + "\n",
		}, nil
	}

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	switch cfg.RunMode {
	case RunSession:
		fmt.Fprintf(&b, "tmux new-session -d -s %s '%s'\n", sessionName, java)
	default:
		b.WriteString(java + "\n")
	}

	return LaunchScript{
		Name:       "start.sh",
		Text:       b.String(),
		Executable: true,
	}, nil
}

// WriteScript writes the script into `dir` and returns its path.
func WriteScript(dir string, script LaunchScript) (string, error) {
	name := filepath.Join(dir, script.Name)
	if err := os.WriteFile(name, []byte(script.Text), 0o644); err != nil {
		return "", fmt.Errorf("%w: write launch script: %w", ErrFileSystem, err)
	}
	if script.Executable {
		if err := os.Chmod(name, 0o755); err != nil {
			return "", fmt.Errorf("%w: set permissions: %w", ErrFileSystem, err)
		}
	}
	return name, nil
}
