package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"smpadmin/internal/keystore"
	"smpadmin/internal/platform/config"
	"smpadmin/internal/platform/httpserver"
	"smpadmin/internal/platform/logger"
	"smpadmin/internal/platform/metrics"
	"smpadmin/internal/sml/client"
	"smpadmin/internal/sml/handler"
	smlmetrics "smpadmin/internal/sml/metrics"
	"smpadmin/internal/sml/service"
	"smpadmin/pkg/platform/audit/publisher"
)

// main wires configuration, storage and the SML workflow behind the admin
// HTTP API. Business logic lives in internal/sml.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "smpadmin: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.StringP("config", "c", "", "path to a TOML configuration file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	keys := keystore.Load(cfg.Keystore, keystore.WithLogger(log))
	m.SetKeystoreValid(keys.IsValid())
	if !keys.IsValid() {
		log.Warn("keystore is not usable; https SML calls and certificate updates are disabled",
			"error", keys.InitError())
	}

	infra, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	smls, err := buildSMLStore(ctx, cfg, infra)
	if err != nil {
		return err
	}
	auditStore, err := buildAuditStore(ctx, cfg, infra)
	if err != nil {
		return err
	}
	capabilityCache := buildCapabilityCache(cfg, infra)

	smlMetrics := smlmetrics.New(m.Registry)
	audits := publisher.NewPublisher(auditStore,
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(m.Registry)),
	)
	defer audits.Close()

	smlClient := client.New(keys,
		client.WithLogger(log),
		client.WithMetrics(smlMetrics),
		client.WithTimeouts(cfg.SML.ConnectionTimeout, cfg.SML.RequestTimeout),
	)
	svc, err := service.New(smlClient, smls, keys, service.Settings{
		SMPID:                cfg.SMP.ID,
		PhysicalAddress:      cfg.SMP.PhysicalAddress,
		LogicalAddress:       cfg.SMP.LogicalAddress,
		RestType:             cfg.SMP.RestType,
		DefaultSMLID:         cfg.SML.DefaultID,
		RequireClientCertSML: cfg.SML.UpdateRequiresClientCert,
	},
		service.WithLogger(log),
		service.WithMetrics(smlMetrics),
		service.WithAuditPublisher(audits),
		service.WithCapabilityCache(capabilityCache),
	)
	if err != nil {
		return fmt.Errorf("build sml service: %w", err)
	}

	router := newRouter(cfg, log, m, infra, handler.New(svc, audits, log))
	srv := httpserver.New(cfg.Server.Addr, router, cfg.SML.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting smpadmin", "addr", cfg.Server.Addr, "smp_id", cfg.SMP.ID, "sml", cfg.SML.DefaultID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
