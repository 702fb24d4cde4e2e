package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/config"
	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes styled earthquakes to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishEarthquakes serializes and publishes every styled earthquake from
// one refresh cycle in a single WriteMessages call. Messages are keyed by
// event ID so updates to the same event land on the same partition.
func (w *Writer) PublishEarthquakes(ctx context.Context, quakes []domain.StyledEarthquake, fetchedAt time.Time) error {
	if len(quakes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(quakes))
	for i := range quakes {
		msg, err := serializeToMessage(quakes[i], fetchedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish earthquakes: %w", err)
	}
	w.logger.Debug("published earthquakes", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// message is the JSON value written for each earthquake.
type message struct {
	ID          string                 `json:"id"`
	Magnitude   *float64               `json:"mag"`
	Place       string                 `json:"place"`
	Time        *time.Time             `json:"time"`
	Lon         float64                `json:"lon"`
	Lat         float64                `json:"lat"`
	Depth       float64                `json:"depth"`
	URL         string                 `json:"url,omitempty"`
	Band        string                 `json:"band"`
	Style       domain.StyleDescriptor `json:"style"`
	Description string                 `json:"description"`
}

// serializeToMessage marshals a StyledEarthquake into a Kafka message.
func serializeToMessage(q domain.StyledEarthquake, fetchedAt time.Time) (kafkago.Message, error) {
	m := message{
		ID:          q.Feature.ID,
		Magnitude:   q.Feature.Magnitude,
		Place:       q.Feature.Place,
		Lon:         q.Feature.Lon,
		Lat:         q.Feature.Lat,
		Depth:       q.Feature.Depth,
		URL:         q.Feature.URL,
		Band:        q.Band.Label,
		Style:       q.Style,
		Description: q.Description,
	}
	if !q.Feature.Time.IsZero() {
		t := q.Feature.Time.UTC()
		m.Time = &t
	}

	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize earthquake %s: %w", q.Feature.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(q.Feature.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "depth_band", Value: []byte(q.Band.Label)},
			{Key: "fetched_at", Value: []byte(fetchedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
