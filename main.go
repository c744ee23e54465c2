package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xiaoyuanzhu-com/comix/config"
	"github.com/xiaoyuanzhu-com/comix/log"
	"github.com/xiaoyuanzhu-com/comix/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Msg("comix failed")
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "comix",
		Short:         "Browse a comic collection from a web browser",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Configuration file path")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Index the collection and serve it over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	})
	rootCmd.AddCommand(newTitlesCommand(&configPath))

	return rootCmd
}

func newServerConfig(cfg *config.Config) *server.Config {
	return &server.Config{
		Port:           cfg.Basics.Port,
		Host:           cfg.Server.Host,
		Env:            cfg.Server.Env,
		CollectionDir:  cfg.Basics.Directory,
		StorageDir:     cfg.Storage.Path,
		TemplatePath:   cfg.Template.Path,
		CacheSize:      cfg.Storage.CacheSize,
		ExtractWorkers: cfg.Storage.ExtractWorkers,
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logFile, err := log.Configure(log.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	srv, err := server.New(newServerConfig(cfg))
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		_ = srv.Shutdown(context.Background())
		return err
	}
	printNetworkAddresses(cfg.Basics.Port)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
	case err, ok := <-srv.Errors():
		if ok {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	return serveErr
}

func printNetworkAddresses(port int) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	var addresses []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipnet.IP.To4(); ip4 != nil {
					addresses = append(addresses, fmt.Sprintf("http://%s:%d", ip4.String(), port))
				}
			}
		}
	}

	for _, addr := range addresses {
		log.Info().Str("url", addr).Msg("network")
	}
}
