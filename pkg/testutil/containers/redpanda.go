//go:build integration

package containers

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// RedpandaContainer wraps a Kafka compatible Redpanda broker.
type RedpandaContainer struct {
	Container *redpanda.Container
	Broker    string
}

// NewRedpandaContainer starts a single node Redpanda broker. The container
// is terminated when the test ends.
func NewRedpandaContainer(t *testing.T) *RedpandaContainer {
	t.Helper()

	ctx := context.Background()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.4")
	if err != nil {
		t.Fatalf("failed to start redpanda container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		t.Fatalf("failed to get redpanda seed broker: %v", err)
	}
	return &RedpandaContainer{Container: container, Broker: broker}
}

// CreateTopic creates a single partition topic.
func (r *RedpandaContainer) CreateTopic(t *testing.T, topic string) {
	t.Helper()

	client, err := kgo.NewClient(kgo.SeedBrokers(r.Broker))
	if err != nil {
		t.Fatalf("failed to create kafka admin client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resp, err := kadm.NewClient(client).CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		t.Fatalf("failed to create topic %s: %v", topic, err)
	}
	if err := resp.Error(); err != nil {
		t.Fatalf("failed to create topic %s: %v", topic, err)
	}
}

// Consume reads up to n records of topic from the beginning.
func (r *RedpandaContainer) Consume(t *testing.T, topic string, n int) []*kgo.Record {
	t.Helper()

	client, err := kgo.NewClient(
		kgo.SeedBrokers(r.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		t.Fatalf("failed to create kafka consumer: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var records []*kgo.Record
	for len(records) < n {
		fetches := client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			t.Fatalf("timed out after %d of %d records: %v", len(records), n, err)
		}
		fetches.EachRecord(func(rec *kgo.Record) {
			records = append(records, rec)
		})
	}
	return records
}
