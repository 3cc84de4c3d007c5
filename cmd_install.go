package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cluttrdev/cli"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"go.cluttr.dev/setup-mc/internal/metaerr"
)

func newInstallCmd() *cli.Command {
	cfg := installCmd{
		prompter: ptermPrompter{},
	}

	fs := flag.NewFlagSet("setup-mc install", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "install",
		ShortHelp:  "Download a server and create its start script.",
		ShortUsage: "setup-mc install [OPTION]... [PROVIDER]",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type installCmd struct {
	rootCmd
	launch launchFlags

	dir        string
	version    string
	acceptEULA bool

	prompter Prompter
}

func (c *installCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)
	c.launch.RegisterFlags(fs)

	fs.StringVar(&c.dir, "dir", "", "The installation directory.")
	fs.StringVar(&c.version, "version", "", "The game version to install.")
	fs.BoolVar(&c.acceptEULA, "accept-eula", false, "Accept the Minecraft EULA without asking.")
}

func (c *installCmd) Exec(ctx context.Context, args []string) (err error) {
	c.initLogging()

	defer func() {
		err = c.wrapLogHint(err)
	}()

	cfg, specs, err := c.loadConfig()
	if err != nil {
		return err
	}

	_ = pterm.DefaultBigText.WithLetters(putils.LettersFromString("setup-mc")).Render()

	dir, err := c.installDir(cfg.Global)
	if err != nil {
		return err
	}

	p, ok, err := c.selectProvider(args)
	if err != nil || !ok {
		return err
	}

	installer := Installer{
		Dir:      dir,
		Specs:    specs,
		Client:   newClient(cfg.Global.UserAgent),
		Prompter: c.prompter,
		Output:   os.Stdout,
	}
	rec, err := installer.Install(ctx, p, c.version)
	if errors.Is(err, ErrInvalidVersion) {
		slog.Info("invalid version", "provider", p.String(), "error", err)
		pterm.Error.Println("Invalid version.")
		return nil
	} else if err != nil {
		slog.With("provider", p.String(), "error", err).
			With(metaerr.GetMetadata(err)...).
			Error("failed to install server")
		return err
	}
	pterm.Success.Printfln("Downloaded %s %s.", p.DisplayName(), rec.Version)

	if err := c.eula(dir); err != nil {
		return err
	}

	return c.launch.createScript(c.prompter, dir, cfg.Global)
}

// installDir asks for the installation directory and creates it.
func (c *installCmd) installDir(g Global) (string, error) {
	dir := c.dir
	if dir == "" {
		dir = g.InstallDir
	}

	if dir == "" {
		var err error
		dir, err = c.prompter.Text("Enter a directory to store the server")
		if err != nil {
			return "", err
		}
		if dir == "" {
			return "", fmt.Errorf("no directory given")
		}
		dir = expandPath(dir)
		if _, err := os.Stat(dir); err == nil {
			ok, err := c.prompter.Confirm("Directory already exists. Continue?")
			if err != nil {
				return "", err
			}
			if !ok {
				return "", errAborted
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", ErrFileSystem, err)
		}
	} else {
		dir = expandPath(dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create directory: %w", ErrFileSystem, err)
	}
	return dir, nil
}

// selectProvider returns the provider named by the arguments or asks for
// one. It reports false if the operator chose to exit.
func (c *installCmd) selectProvider(args []string) (Provider, bool, error) {
	if len(args) > 0 {
		p, err := ParseProvider(args[0])
		return p, err == nil, err
	}

	options := make([]string, 0, len(providers)+1)
	for _, p := range providers {
		options = append(options, p.DisplayName())
	}
	options = append(options, "Exit")

	index, err := c.prompter.Select("Select a server type", options)
	if err != nil {
		return 0, false, err
	}
	if index >= len(providers) {
		return 0, false, nil
	}
	return providers[index], true, nil
}

func (c *installCmd) eula(dir string) error {
	if !c.acceptEULA {
		ok, err := c.prompter.Confirm("Do you agree to the Minecraft EULA (https://aka.ms/MinecraftEULA)?")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: the EULA must be accepted to run a server", errAborted)
		}
	}
	if err := WriteEULA(dir); err != nil {
		return err
	}
	pterm.Info.Println("Placed eula.txt in the server directory.")
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		path = filepath.Join("${HOME}", path[1:])
	}
	return os.ExpandEnv(path)
}
