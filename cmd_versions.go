package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cluttrdev/cli"

	"go.cluttr.dev/setup-mc/internal/metaerr"
)

func newVersionsCmd() *cli.Command {
	cfg := versionsCmd{
		out: os.Stdout,
	}

	fs := flag.NewFlagSet("setup-mc versions", flag.ExitOnError)

	cfg.RegisterFlags(fs)

	return &cli.Command{
		Name:       "versions",
		ShortHelp:  "List the installable versions of a provider.",
		ShortUsage: "setup-mc versions [OPTION]... PROVIDER",
		Flags:      fs,
		Exec:       cfg.Exec,
	}
}

type versionsCmd struct {
	rootCmd

	channel string

	out io.Writer
}

func (c *versionsCmd) RegisterFlags(fs *flag.FlagSet) {
	c.rootCmd.RegisterFlags(fs)

	fs.StringVar(&c.channel, "channel", "", "The channel to list ('release', 'snapshot', 'stable' or 'unstable').")
}

func (c *versionsCmd) Exec(ctx context.Context, args []string) (err error) {
	c.initLogging()

	defer func() {
		err = c.wrapLogHint(err)
	}()

	if len(args) != 1 {
		return flag.ErrHelp
	}
	p, err := ParseProvider(args[0])
	if err != nil {
		return err
	}

	cfg, specs, err := c.loadConfig()
	if err != nil {
		return err
	}

	catalog, err := NewCatalog(p, specs[p], newClient(cfg.Global.UserAgent))
	if err != nil {
		return err
	}

	channel := Channel(c.channel)
	if channel == "" {
		channel = p.DefaultChannel()
	}
	entries, err := catalog.Versions(ctx, channel)
	if err != nil {
		slog.With("provider", p.String(), "error", err).
			With(metaerr.GetMetadata(err)...).
			Error("failed to fetch catalog")
		return fmt.Errorf("fetch catalog: %w", err)
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(c.out, "%s\t%s\n", e.ID, e.Channel); err != nil {
			return err
		}
	}
	return nil
}
