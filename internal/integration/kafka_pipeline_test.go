//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/quake-feed-search/internal/adapter/atomfeed"
	"github.com/couchcryptid/quake-feed-search/internal/adapter/kafka"
	"github.com/couchcryptid/quake-feed-search/internal/config"
	"github.com/couchcryptid/quake-feed-search/internal/domain"
	"github.com/couchcryptid/quake-feed-search/internal/feedgen"
	"github.com/couchcryptid/quake-feed-search/internal/observability"
	"github.com/couchcryptid/quake-feed-search/internal/pipeline"
	"github.com/couchcryptid/quake-feed-search/internal/query"
	"github.com/couchcryptid/quake-feed-search/internal/report"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-quake-matches"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("quake-search-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// publishedMessage holds a deserialized message read from the match topic.
type publishedMessage struct {
	Record  domain.EventRecord
	Key     string
	Headers map[string]string
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from match topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var rec domain.EventRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal match message")
	return publishedMessage{Record: rec, Key: string(msg.Key), Headers: headers}
}

// TestSearchPublishesMatches runs a bucket search over a synthetic feed
// directory, writes the report and publishes the matches to a real broker.
func TestSearchPublishesMatches(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	dir := t.TempDir()
	feedDir := filepath.Join(dir, "feeds")
	require.NoError(t, os.MkdirAll(feedDir, 0o755))

	end := time.Date(2025, 1, 28, 12, 0, 0, 0, time.UTC)
	f, err := os.Create(filepath.Join(feedDir, "synthetic.atom"))
	require.NoError(t, err)
	require.NoError(t, feedgen.Write(f, "synthetic", end, feedgen.Synthesize(50, end, 11)))
	require.NoError(t, f.Close())

	q, err := query.Build(query.Params{Bucket: ">=3"})
	require.NoError(t, err)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	searcher := pipeline.New(atomfeed.NewDirReader(feedDir, "", nil), nil, discardLogger(), metrics, nil)

	res, err := searcher.Search(ctx, q)
	require.NoError(t, err)
	require.NotZero(t, res.Stats.Matched, "seed 11 produces at least one bucket >=3 event")

	reportPath := filepath.Join(dir, "displayfiles", "display_search_results.txt")
	require.NoError(t, report.WriteFile(reportPath, q.Describe(), res.Groups))
	require.NoError(t, searcher.Publish(ctx, writer, res))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	want := res.Records()
	got := make([]publishedMessage, 0, len(want))
	for len(got) < len(want) {
		got = append(got, readPublished(ctx, t, consumer))
	}

	for i, pm := range got {
		assert.Equal(t, want[i].ID, pm.Key)
		assert.Equal(t, want[i].Title, pm.Record.Title)
		require.NotNil(t, pm.Record.MagnitudeValue)
		assert.GreaterOrEqual(t, *pm.Record.MagnitudeValue, 3.0)

		bucket, err := strconv.Atoi(pm.Headers["magnitude_bucket"])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, bucket, 3)
		assert.Equal(t, want[i].Timestamp, pm.Headers["published"])
	}

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "magnitude bucket >=3")
	assert.NotContains(t, string(data), report.NoMatches)
}
