package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/devbackend"
	"github.com/goliatone/go-formflow/internal/httpx"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/contract"
	"github.com/goliatone/go-formflow/pkg/webui"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the resolved configuration and logger into every subcommand.
type cli struct {
	configPath string
	backendURL string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "formflow",
		Short:        "Generate, fill and validate forms from a description",
		Long:         "formflow asks a form backend for a schema, renders it in the terminal or the browser and submits the answers for validation.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.backendURL, "backend", "", "form backend base URL")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(c.newTUICommand())
	root.AddCommand(c.newServeCommand())
	root.AddCommand(c.newDevBackendCommand())
	root.AddCommand(c.newContractCommand())
	root.AddCommand(c.newCheckCommand())
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend.URL = strings.TrimSpace(c.backendURL)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = strings.TrimSpace(c.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func (c *cli) newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run an interactive terminal session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
}

func (c *cli) runTUI(ctx context.Context) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	backend, err := formflow.NewClient(c.cfg.Backend.URL, c.logger)
	if err != nil {
		return err
	}
	app, err := formflow.NewTerminal(backend, c.logger)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func (c *cli) newServeCommand() *cobra.Command {
	var (
		withDev     bool
		templateDir string
		variant     string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			backendURL := c.cfg.Backend.URL
			if withDev {
				backendURL = localURL(c.cfg.Dev.Addr)
			}
			if cmd.Flags().Changed("variant") {
				c.cfg.Web.Variant = variant
			}

			backend, err := formflow.NewClient(backendURL, c.logger)
			if err != nil {
				return err
			}
			srv, err := formflow.NewWeb(backend, c.logger.Named("web"),
				webui.WithTheme(c.cfg.Web.Theme, c.cfg.Web.Variant),
				webui.WithTemplateDir(templateDir),
			)
			if err != nil {
				return err
			}

			group, ctx := errgroup.WithContext(ctx)
			if withDev {
				handler, closeStore, err := c.devHandler()
				if err != nil {
					return err
				}
				defer closeStore()
				group.Go(func() error {
					return httpx.ListenAndServe(ctx, c.cfg.Dev.Addr, handler, c.logger.Named("devbackend"))
				})
			}
			group.Go(func() error {
				return httpx.ListenAndServe(ctx, c.cfg.Web.Addr, srv.Handler(), c.logger.Named("web"))
			})
			return group.Wait()
		},
	}
	cmd.Flags().BoolVar(&withDev, "dev-backend", false, "also run the development backend and point the UI at it")
	cmd.Flags().StringVar(&templateDir, "templates", "", "directory with page template overrides")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant (for example dark)")
	return cmd
}

func (c *cli) newDevBackendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devbackend",
		Short: "Run the development form backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			handler, closeStore, err := c.devHandler()
			if err != nil {
				return err
			}
			defer closeStore()
			return httpx.ListenAndServe(ctx, c.cfg.Dev.Addr, handler, c.logger.Named("devbackend"))
		},
	}
}

func (c *cli) devHandler() (http.Handler, func(), error) {
	store, err := devbackend.OpenStore(c.cfg.Dev.Database)
	if err != nil {
		return nil, nil, err
	}
	server, err := devbackend.NewServer(store, devbackend.WithLogger(c.logger.Named("devbackend")))
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return server.Handler(), func() { _ = store.Close() }, nil
}

func (c *cli) newContractCommand() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Print the backend HTTP contract",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !list {
				_, err := out.Write(contract.Raw())
				return err
			}
			ops, err := contract.Operations(cmd.Context())
			if err != nil {
				return err
			}
			for _, op := range ops {
				fmt.Fprintf(out, "%-6s %-28s %s\n", op.Method, op.Path, op.Summary)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list operations instead of printing the document")
	return cmd
}

func (c *cli) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the form backend is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := formflow.NewClient(c.cfg.Backend.URL, c.logger)
			if err != nil {
				return err
			}
			if err := backend.Health(cmd.Context()); err != nil {
				return fmt.Errorf("backend %s: %w", backend.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend %s is healthy\n", backend.BaseURL())
			return nil
		},
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// localURL turns a listen address such as ":8000" into a loopback URL.
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
