package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	httpadapter "github.com/bft-labs/postsync/internal/adapters/http"
	"github.com/bft-labs/postsync/internal/app"
	"github.com/bft-labs/postsync/internal/cliconfig"
	"github.com/bft-labs/postsync/pkg/log"
)

const longHelp = `
Keep a local copy of a remote posts collection and edit it from the terminal.

Every command first fetches the whole collection, then performs its one
operation and prints the result. Failures are reported the way the store
records them and make the command exit non-zero.

Configure via $HOME/.postsync/config.toml, a .env file, POSTSYNC_* variables or flags.
`

var exampleUsage = strings.TrimSpace(`
  postsync list
  postsync create --title "Hello" --body "First post"
  postsync update --id 1 --title "Edited" --body "New body"
  postsync delete --id 1
  postsync fake-server --addr :8080 &
  postsync --base-url http://localhost:8080/posts watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli holds state shared by all subcommands once PersistentPreRunE has run.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	changed map[string]bool

	zl      zerolog.Logger
	logger  log.Logger
	gateway *httpadapter.PostGateway
}

func main() {
	c := &cli{cfg: cliconfig.DefaultConfig()}
	c.zl, _ = log.NewConsoleLogger(os.Stderr, "info")

	root := &cobra.Command{
		Use:           "postsync",
		Short:         "List, create, edit and delete posts on a REST collection",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.postsync/config.toml)")
	root.PersistentFlags().StringVar(&c.cfg.BaseURL, "base-url", c.cfg.BaseURL, "posts collection URL")
	root.PersistentFlags().DurationVar(&c.cfg.HTTPTimeout, "timeout", c.cfg.HTTPTimeout, "HTTP timeout (0 disables it)")
	root.PersistentFlags().StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&c.cfg.Output, "output", "o", c.cfg.Output, "output format (table, json)")
	root.PersistentFlags().BoolVar(&c.cfg.ReportUpdateDecodeErrors, "report-update-decode-errors", c.cfg.ReportUpdateDecodeErrors, "treat undecodable update responses as errors")

	root.AddCommand(
		c.listCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.watchCmd(),
		c.fakeServerCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		c.zl.Error().Err(err).Msg("postsync")
		os.Exit(1)
	}
}

// setup layers config sources (defaults < file < .env < env < flags),
// validates the result and builds the logger and gateway.
func (c *cli) setup(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	c.cfgPath = cfgFile

	c.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { c.changed[f.Name] = true })

	if err := cliconfig.Load(&c.cfg, cfgFile, c.changed); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	zl, err := log.NewConsoleLogger(os.Stderr, c.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	c.zl = zl
	c.logger = log.NewZerologAdapterWithLogger(zl)
	c.zl.Debug().Interface("config", c.cfg).Msg("configuration")

	httpadapter.UserAgent = "postsync/" + getVersion()
	client := &http.Client{Timeout: c.cfg.HTTPTimeout}
	c.gateway = httpadapter.NewPostGateway(c.cfg.BaseURL, client, c.logger)

	return nil
}

func (c *cli) newStore() *app.Store {
	policy := app.SwallowUpdateDecodeErrors
	if c.cfg.ReportUpdateDecodeErrors {
		policy = app.ReportUpdateDecodeErrors
	}
	return app.NewStore(c.gateway,
		app.WithLogger(c.logger),
		app.WithUpdateDecodePolicy(policy),
	)
}
