package sinks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/nvx-fleet/internal/events"
	"github.com/nerrad567/nvx-fleet/internal/history"
)

// Recorder persists history entries. history.Repository satisfies it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

const historyWriteTimeout = 5 * time.Second

// HistorySink stores records in the event history.
type HistorySink struct {
	repo   Recorder
	logger Logger
}

func NewHistorySink(repo Recorder, logger Logger) *HistorySink {
	return &HistorySink{repo: repo, logger: orNoop(logger)}
}

func (s *HistorySink) Handle(rec events.Record) {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		s.logger.Error("failed to marshal event payload", "record", rec.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()

	err = s.repo.Record(ctx, history.Entry{
		RecordID:   rec.ID,
		EndpointID: rec.SourceID,
		Kind:       string(rec.Kind),
		Name:       rec.Name,
		Input:      rec.Input,
		Payload:    payload,
		CreatedAt:  rec.Timestamp,
	})
	if err != nil {
		s.logger.Warn("failed to store event record", "record", rec.ID, "error", err)
	}
}
