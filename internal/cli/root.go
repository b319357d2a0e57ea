package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/nikolayk812/cartsync/internal/app"
	"github.com/nikolayk812/cartsync/internal/config"
	"github.com/nikolayk812/cartsync/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Token   string
	Format  string // "json" | "text"
	Verbose bool

	// LoadConfig defaults to config.Load.
	LoadConfig func() (*config.Config, error)
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}

	cmd := &cobra.Command{
		Use:           "cartsync",
		Short:         "Shopping cart with guest and account sync",
		Long:          "Keeps a guest cart on this machine and merges it into the account cart on login.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "session access token (default $"+config.EnvSessionToken+")")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewBadgeCommand(opts))

	return cmd
}

// resumeMode says what withApp does with a supplied session token.
type resumeMode int

const (
	// resumeNone leaves the token to the command.
	resumeNone resumeMode = iota
	// resumeRequired installs the token; an unusable token fails the command.
	resumeRequired
	// resumeBestEffort installs the token when it is usable and logs otherwise.
	resumeBestEffort
)

// env is what a command runs against.
type env struct {
	ctx   context.Context
	app   *app.App
	out   *printer
	token string
}

// withApp builds the application for one command invocation.
func (o *RootOptions) withApp(cmd *cobra.Command, mode resumeMode, fn func(e env) error) error {
	cfg, err := o.LoadConfig()
	if err != nil {
		return err
	}

	level := logger.ParseLevel(cfg.App.LogLevel)
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	log := logger.New(logger.Options{
		ServiceName: "cartsync",
		Level:       level,
		Format:      cfg.App.LogFormat,
		Output:      cmd.ErrOrStderr(),
	})

	ctx := log.WithProfile(cmd.Context(), cfg.App.Profile)
	out := &printer{format: o.Format, w: cmd.OutOrStdout()}

	a, err := app.New(ctx, app.Options{
		Config:   cfg,
		Logger:   log,
		Notifier: out,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			log.Warn(ctx, "close app", closeErr)
		}
	}()

	token := o.token(cfg)
	if token != "" && mode != resumeNone {
		if err := a.Resume(token); err != nil {
			if mode == resumeRequired {
				return err
			}
			log.Warn(ctx, "session token not usable, continuing as guest", err)
		}
	}

	return fn(env{ctx: ctx, app: a, out: out, token: token})
}

func (o *RootOptions) token(cfg *config.Config) string {
	if o.Token != "" {
		return o.Token
	}
	return cfg.App.SessionToken
}

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
