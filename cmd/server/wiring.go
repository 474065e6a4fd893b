package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"smpadmin/internal/platform/config"
	"smpadmin/internal/platform/postgres"
	platformredis "smpadmin/internal/platform/redis"
	"smpadmin/internal/sml/cache"
	"smpadmin/internal/sml/models"
	"smpadmin/internal/sml/service"
	"smpadmin/internal/sml/store"
	audit "smpadmin/pkg/platform/audit"
	kafkastore "smpadmin/pkg/platform/audit/store/kafka"
	auditmemory "smpadmin/pkg/platform/audit/store/memory"
	auditpostgres "smpadmin/pkg/platform/audit/store/postgres"
)

// infra holds the external connections opened at startup. Each field is
// nil when the corresponding backend is not configured.
type infra struct {
	db     *sql.DB
	redis  *platformredis.Client
	kafka  *kgo.Client
	logger *slog.Logger
}

func openInfra(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{logger: log}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.db = db
	}

	if cfg.Cache.Backend == config.BackendRedis {
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.redis = client
	}

	if cfg.Audit.Backend == config.BackendKafka {
		client, err := kafkastore.NewClient(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.kafka = client
	}
	return in, nil
}

// Close releases every open connection. Kafka is flushed by Close.
func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.logger.Warn("failed to close redis client", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			in.logger.Warn("failed to close database", "error", err)
		}
	}
}

// buildSMLStore returns the SML catalogue seeded with the well-known SMLs
// and the configured endpoints. Postgres is used when a database is set.
func buildSMLStore(ctx context.Context, cfg *config.Config, in *infra) (service.SMLInfoStore, error) {
	seed := store.WellKnown()
	for _, ep := range cfg.SML.Endpoints {
		info, err := models.NewSMLInfo(ep.ID, ep.DisplayName, ep.DNSZone, ep.ManagementServiceURL,
			ep.URLSuffixManageSMP, ep.URLSuffixManageParticipant, ep.ClientCertificateRequired)
		if err != nil {
			return nil, fmt.Errorf("configured sml endpoint %q: %w", ep.ID, err)
		}
		seed = append(seed, *info)
	}

	if in.db == nil {
		return store.NewInMemory(seed...), nil
	}
	pg := store.NewPostgres(in.db)
	if err := pg.Migrate(ctx); err != nil {
		return nil, err
	}
	if err := pg.Seed(ctx, seed...); err != nil {
		return nil, err
	}
	return pg, nil
}

func buildAuditStore(ctx context.Context, cfg *config.Config, in *infra) (audit.Store, error) {
	var local audit.Store = auditmemory.NewInMemoryStore()
	if in.db != nil {
		pg := auditpostgres.New(in.db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		local = pg
	}

	switch cfg.Audit.Backend {
	case config.BackendKafka:
		// Events go to Kafka and are mirrored locally for the audit listing.
		return kafkastore.New(in.kafka, cfg.Audit.KafkaTopic, kafkastore.WithReader(local)), nil
	default:
		return local, nil
	}
}

func buildCapabilityCache(cfg *config.Config, in *infra) service.CapabilityCache {
	if cfg.Cache.Backend == config.BackendRedis && in.redis != nil {
		return cache.NewRedis(in.redis.Client, cfg.Cache.CapabilityTTL)
	}
	return cache.NewMemory(cfg.Cache.CapabilityTTL)
}
