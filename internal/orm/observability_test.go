package orm_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/arllen133/blogcms/internal/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func TestWithLogger(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)
	session := setupTestDB(t, orm.WithLogger(logger), orm.WithQueryLogging(true))

	require.NoError(t, orm.NewRepository[Note](session).Create(context.Background(), &Note{Title: "logged"}))

	out := buf.String()
	assert.Contains(t, out, "query executed")
	assert.Contains(t, out, "INSERT INTO notes")
}

func TestWithSlowQueryThreshold(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)
	session := setupTestDB(t, orm.WithLogger(logger), orm.WithSlowQueryThreshold(time.Nanosecond))

	require.NoError(t, orm.NewRepository[Note](session).Create(context.Background(), &Note{Title: "slow"}))

	assert.Contains(t, buf.String(), "slow query")
}

func TestLogLevels(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)
	session := setupTestDB(t, orm.WithLogger(logger))
	ctx := context.Background()

	_, err := orm.NewRepository[Note](session).FindOne(ctx, "missing")
	require.ErrorIs(t, err, orm.ErrNotFound)
	assert.Empty(t, buf.String(), "a miss is not logged")

	err = orm.NewRepository[NoteTag](session).Create(ctx, &NoteTag{NoteID: "x", TagID: "y"})
	require.ErrorIs(t, err, orm.ErrConstraint)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "constraint violation")

	buf.Reset()
	_, err = session.Exec(ctx, "SELECT * FROM no_such_table")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "query failed")
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer provider.Shutdown(context.Background())

	session := setupTestDB(t, orm.WithTracer(provider.Tracer("test")))
	ctx := context.Background()

	note := &Note{Title: "traced"}
	require.NoError(t, orm.NewRepository[Note](session).Create(ctx, note))
	_, err := orm.NewRepository[Note](session).FindOne(ctx, note.ID)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "orm.exec", spans[0].Name())
	assert.Equal(t, "orm.select", spans[1].Name())

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "sqlite3", attrs["db.system"])
	assert.Contains(t, attrs["db.statement"], "INSERT INTO notes")
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	session := setupTestDB(t, orm.WithMeter(provider.Meter("test")))
	ctx := context.Background()

	require.NoError(t, orm.NewRepository[Note](session).Create(ctx, &Note{Title: "counted"}))
	_, _ = session.Exec(ctx, "SELECT * FROM no_such_table")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.EqualValues(t, 2, totals["blogcms.query.count"])
	assert.EqualValues(t, 1, totals["blogcms.query.errors"])
}

func TestWithDefaultProviders(t *testing.T) {
	session := setupTestDB(t, orm.WithDefaultTracer(), orm.WithDefaultMeter())
	ctx := context.Background()

	note := &Note{Title: "defaults"}
	require.NoError(t, orm.NewRepository[Note](session).Create(ctx, note))

	found, err := orm.NewRepository[Note](session).FindOne(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "defaults", found.Title)
}
