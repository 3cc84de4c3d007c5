package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cluttrdev/cli"
	"github.com/pterm/pterm"
)

// systemMemoryGB is replaced in tests.
var systemMemoryGB = totalMemoryGB

func newScriptCmd() *cli.Command {
	cfg := scriptCmd{
		prompter: ptermPrompter{},
	}

	fs := flag.NewFlagSet("setup-mc script", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "script",
		ShortHelp:  "Create the start script of an installed server.",
		ShortUsage: "setup-mc script [OPTION]...",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type scriptCmd struct {
	rootCmd
	launch launchFlags

	dir string

	prompter Prompter
}

func (c *scriptCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
	c.launch.RegisterFlags(fs)

	fs.StringVar(&c.dir, "dir", ".", "The installation directory.")
}

func (c *scriptCmd) Exec(ctx context.Context, args []string) (err error) {
	c.initLogging()

	defer func() {
		err = c.wrapLogHint(err)
	}()

	cfg, _, err := c.loadConfig()
	if err != nil {
		return err
	}

	dir := c.dir
	if cfg.Global.InstallDir != "" && dir == "." {
		dir = cfg.Global.InstallDir
	}

	return c.launch.createScript(c.prompter, expandPath(dir), cfg.Global)
}

// launchFlags pre-answer the launch script questions.
type launchFlags struct {
	memory      int
	vendorFlags optionalBool
	session     optionalBool
}

func (f *launchFlags) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&f.memory, "memory", 0, "The server heap size in GB.")
	fs.Var(&f.vendorFlags, "vendor-flags", "Use Aikar's JVM flags (Purpur and Paper only).")
	fs.Var(&f.session, "session", "Start the server in a detached tmux session (unix only).")
}

// launchConfig assembles the launch configuration of the installed server,
// asking for everything that is neither given by flag nor by config.
func (f *launchFlags) launchConfig(p Prompter, rec InstallRecord, g Global, platform Platform) (LaunchConfig, error) {
	cfg := LaunchConfig{
		HeapGigabytes: f.memory,
		Platform:      platform,
	}
	if cfg.HeapGigabytes == 0 {
		cfg.HeapGigabytes = g.Memory
	}

	total := systemMemoryGB()
	if cfg.HeapGigabytes == 0 {
		if total > 0 {
			pterm.Info.Printfln(
				"Your system has %d GB of RAM. The server needs at least 1 GB, leave at least 1 GB for the system (i.e. allocate at most %d GB).",
				total, suggestedHeapGB(total),
			)
		}
		heap, err := askInt(p, "Enter the amount of memory to allocate to the server in GB")
		if err != nil {
			return LaunchConfig{}, err
		}
		cfg.HeapGigabytes = heap
	}

	if exceedsMemory(cfg.HeapGigabytes, total) {
		ok, err := p.Confirm(fmt.Sprintf(
			"%d GB exceeds the %d GB of your system and may be an invalid memory amount. Continue?",
			cfg.HeapGigabytes, total,
		))
		if err != nil {
			return LaunchConfig{}, err
		}
		if !ok {
			return LaunchConfig{}, errAborted
		}
	}

	if rec.Provider.VendorFlags() {
		use, err := askBool(p, f.vendorFlags.orDefault(g.VendorFlags), "Would you like to use Aikar's flags?")
		if err != nil {
			return LaunchConfig{}, err
		}
		cfg.VendorFlags = use
	}

	if platform != PlatformWindows {
		use, err := askBool(p, f.session.orDefault(g.Session), "Would you like to use tmux?")
		if err != nil {
			return LaunchConfig{}, err
		}
		if use {
			cfg.RunMode = RunSession
		}
	}

	return cfg, nil
}

// createScript writes the launch script of the server installed in `dir`.
func (f *launchFlags) createScript(p Prompter, dir string, g Global) error {
	rec, err := ReadRecord(dir)
	if err != nil {
		return err
	}

	cfg, err := f.launchConfig(p, rec, g, CurrentPlatform())
	if err != nil {
		return err
	}

	script, err := BuildScript(rec, cfg)
	if err != nil {
		return err
	}
	if _, err := WriteScript(dir, script); err != nil {
		return err
	}

	if cfg.RunMode == RunSession {
		pterm.Success.Println("Created start script with tmux.")
	} else {
		pterm.Success.Println("Created start script.")
	}
	return nil
}

func askBool(p Prompter, preset *bool, question string) (bool, error) {
	if preset != nil {
		return *preset, nil
	}
	return p.Confirm(question)
}
