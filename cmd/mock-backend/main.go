package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/backend"
	"github.com/amoylab/coursechat/internal/backend/answer"
	"github.com/amoylab/coursechat/internal/backend/database"
	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/pkg/helper"
	"github.com/amoylab/coursechat/pkg/logger"
	"github.com/amoylab/coursechat/pkg/trace"
	"github.com/amoylab/coursechat/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mock-backend",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mock-backend version %s\n", version.Get())
		},
	}

	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Test the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return fmt.Errorf("configuration test failed: %w", err)
			}
			if _, err := database.LoadCatalog(helper.GetCfgPath(cfg.Catalog)); err != nil {
				return fmt.Errorf("configuration test failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration %s is ok\n", path)
			return nil
		},
	}

	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop a running mock-backend through its pid file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			pidPath := helper.GetPIDPath(cfg.PID)
			if pidPath == "" {
				return errors.New("no pid file configured")
			}
			if err := helper.SignalPID(pidPath, syscall.SIGTERM); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent SIGTERM to the process in %s\n", pidPath)
			return nil
		},
	}

	rootCmd = &cobra.Command{
		Use:          cnst.BackendCommand,
		Short:        "Development backend for coursechat",
		Long:         `mock-backend serves the /api endpoints the coursechat widget talks to, backed by a seeded catalog`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(stopCmd)
}

func loadConfig() (*config.BackendConfig, string, error) {
	if configPath != "" {
		return config.LoadConfig[config.BackendConfig](configPath)
	}
	cfg, path, err := config.LoadConfig[config.BackendConfig](cnst.BackendYaml)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default[config.BackendConfig](), "(defaults)", nil
	}
	return cfg, path, err
}

func run() error {
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

	if pidPath := helper.GetPIDPath(cfg.PID); pidPath != "" {
		if err := helper.WritePID(pidPath); err != nil {
			return fmt.Errorf("failed to write pid file: %w", err)
		}
		defer func() {
			if err := helper.RemovePID(pidPath); err != nil {
				lg.Warn("failed to remove pid file", zap.String("path", pidPath), zap.Error(err))
			}
		}()
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return serve(ctx, cfg, lg, ln)
}

// serve opens and seeds the database, then serves on ln until ctx is done
func serve(ctx context.Context, cfg *config.BackendConfig, lg *zap.Logger, ln net.Listener) error {
	db, err := database.NewDatabase(lg, &cfg.Database)
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	catalog, err := database.LoadCatalog(helper.GetCfgPath(cfg.Catalog))
	if err != nil {
		ln.Close()
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if _, err := db.Seed(ctx, catalog); err != nil {
		ln.Close()
		return err
	}

	answerer, err := answer.New(&cfg.Answerer, db, lg)
	if err != nil {
		ln.Close()
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Handler:           backend.NewServer(lg, cfg, db, answerer).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("Starting mock-backend",
			zap.String("addr", ln.Addr().String()),
			zap.String("answerer", answerer.Name()),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("Shutting down mock-backend")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		lg.Error("failed to shutdown server", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
