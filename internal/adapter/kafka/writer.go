package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/aqi-hexmap/internal/config"
	"github.com/couchcryptid/aqi-hexmap/internal/domain"
	"github.com/couchcryptid/aqi-hexmap/internal/observability"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer exports hex cells to a Kafka topic.
// It implements pipeline.CellPublisher.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured export topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaExportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// PublishCells serializes and publishes one year's cells in a single
// WriteMessages call. Keys are "<year>-<index>" so a cell always lands on the
// same partition.
func (w *Writer) PublishCells(ctx context.Context, year int, cells []domain.HexCell) error {
	if len(cells) == 0 {
		return nil
	}
	msgs, err := serializeToMessages(year, cells, domain.Now().UTC())
	if err != nil {
		w.metrics.ExportErrors.Inc()
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		w.metrics.ExportErrors.Inc()
		return fmt.Errorf("write %d hex cells: %w", len(msgs), err)
	}
	w.metrics.ExportMessages.Add(float64(len(msgs)))
	w.logger.Info("hex cells exported", "year", year, "cells", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessages marshals each HexCell into a Kafka message.
func serializeToMessages(year int, cells []domain.HexCell, loadedAt time.Time) ([]kafkago.Message, error) {
	yearHeader := []byte(strconv.Itoa(year))
	loadedHeader := []byte(loadedAt.Format(time.RFC3339))

	msgs := make([]kafkago.Message, len(cells))
	for i := range cells {
		data, err := json.Marshal(cells[i])
		if err != nil {
			return nil, fmt.Errorf("serialize hex cell %d-%d: %w", year, i, err)
		}
		msgs[i] = kafkago.Message{
			Key:   []byte(fmt.Sprintf("%d-%d", year, i)),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "year", Value: yearHeader},
				{Key: "loaded_at", Value: loadedHeader},
			},
		}
	}
	return msgs, nil
}
