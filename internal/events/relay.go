package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record is a stored order event awaiting publication.
type Record struct {
	ID        snowflake.ID
	OrderID   snowflake.ID
	EventType string
	Payload   datatypes.JSON
	CreatedAt time.Time
}

// Sink delivers one order event to downstream consumers.
type Sink interface {
	Publish(ctx context.Context, record Record) error
}

// StreamSink appends events to a Redis stream.
type StreamSink struct {
	client redis.UniversalClient
	stream string
}

func NewStreamSink(client redis.UniversalClient, stream string) *StreamSink {
	return &StreamSink{client: client, stream: stream}
}

func (s *StreamSink) Publish(ctx context.Context, record Record) error {
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":         record.ID.String(),
			"order_id":   record.OrderID.String(),
			"event_type": record.EventType,
			"payload":    string(record.Payload),
			"created_at": record.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
}

// LogSink writes events to the structured log when no stream is configured.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, record Record) error {
	s.log.Info("order event",
		zap.String("event_id", record.ID.String()),
		zap.String("order_id", record.OrderID.String()),
		zap.String("event_type", record.EventType),
		zap.Any("payload", json.RawMessage(record.Payload)),
	)
	return nil
}

type RelayParams struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config config.Config
	Redis  redis.UniversalClient `optional:"true"`
}

// Relay publishes unpublished order_events rows in creation order and marks
// each one published after its sink accepts it.
type Relay struct {
	db   *gorm.DB
	log  *zap.Logger
	sink Sink
	cfg  config.RelayConfig
}

func NewRelay(p RelayParams) *Relay {
	log := p.Log.Named("events.relay")
	var sink Sink = NewLogSink(log)
	if p.Redis != nil && p.Config.Relay.Stream != "" {
		sink = NewStreamSink(p.Redis, p.Config.Relay.Stream)
	}
	return NewRelayWithSink(p.DB, log, sink, p.Config.Relay)
}

func NewRelayWithSink(db *gorm.DB, log *zap.Logger, sink Sink, cfg config.RelayConfig) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &Relay{db: db, log: log, sink: sink, cfg: cfg}
}

func (r *Relay) RunForever(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.log.Warn("order event relay run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce publishes at most one batch and returns how many events were published.
// It stops at the first sink failure so later events are not published ahead of it.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	if r.db == nil || r.sink == nil {
		return 0, errors.New("relay_unavailable")
	}

	var records []Record
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, order_id, event_type, payload, created_at
		 FROM order_events
		 WHERE published = false
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		r.cfg.BatchSize,
	).Scan(&records).Error
	if err != nil {
		return 0, err
	}

	published := 0
	for _, record := range records {
		if err := r.sink.Publish(ctx, record); err != nil {
			return published, err
		}
		if err := r.db.WithContext(ctx).Exec(
			`UPDATE order_events SET published = true WHERE id = ?`,
			record.ID,
		).Error; err != nil {
			return published, err
		}
		published++
	}
	if published > 0 {
		r.log.Debug("order events published", zap.Int("count", published))
	}
	return published, nil
}

// RunRelay starts the relay loop for the lifetime of the application.
func RunRelay(lc fx.Lifecycle, cfg config.Config, relay *Relay) {
	if !cfg.Relay.Enabled {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				relay.RunForever(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
