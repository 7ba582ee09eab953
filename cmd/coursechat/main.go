package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/console"
	"github.com/amoylab/coursechat/internal/i18n"
	"github.com/amoylab/coursechat/internal/widget"
	"github.com/amoylab/coursechat/pkg/logger"
	"github.com/amoylab/coursechat/pkg/trace"
	"github.com/amoylab/coursechat/pkg/version"
)

var (
	configPath string
	noColor    bool

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of coursechat",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coursechat version %s\n", version.Get())
		},
	}

	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Test the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := loadConfig()
			if err != nil {
				return fmt.Errorf("configuration test failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration %s is ok\n", path)
			return nil
		},
	}

	rootCmd = &cobra.Command{
		Use:          cnst.CommandName,
		Short:        "Course assistant chat",
		Long:         `coursechat is a terminal chat widget for the course assistant backend`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "", "path to configuration file")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(testCmd)
}

// loadConfig reads --conf, else coursechat.yaml from the usual locations,
// else runs on defaults.
func loadConfig() (*config.WidgetConfig, string, error) {
	if configPath != "" {
		return config.LoadConfig[config.WidgetConfig](configPath)
	}
	cfg, path, err := config.LoadConfig[config.WidgetConfig](cnst.WidgetYaml)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default[config.WidgetConfig](), "(defaults)", nil
	}
	return cfg, path, err
}

func run(cmd *cobra.Command) error {
	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer lg.Sync()
	lg.Info("Loaded configuration", zap.String("path", cfgPath), zap.String("version", version.Get()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			lg.Warn("failed to shutdown tracing", zap.Error(err))
		}
	}()

	tr, err := i18n.New(cfg.Language)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	out := cmd.OutOrStdout()
	view := console.New(out, console.Options{
		Persona:    cfg.Persona,
		Color:      !noColor && isatty.IsTerminal(os.Stdout.Fd()),
		Translator: tr,
	})

	w, err := widget.New(ctx, cfg, view, lg)
	if err != nil {
		return fmt.Errorf("failed to start widget: %w", err)
	}

	repl := newREPL(w, view, cmd.InOrStdin(), out)
	replErr := repl.Run(ctx)

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.Close(cctx); err != nil {
		lg.Error("failed to close widget", zap.Error(err))
	}
	return replErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
