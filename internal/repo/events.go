package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amara-oss/backend-duka/internal/events"
)

// EventStore appends domain events to the audit log table.
type EventStore struct {
	Pool *pgxpool.Pool
}

// InsertEvent implements events.Store.
func (s EventStore) InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	ev := events.Event{Topic: topic, AggregateID: aggregateID, Payload: payload}
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (topic, aggregate_id, payload) VALUES ($1, $2, $3)
		 RETURNING id, occurred_at`,
		topic, aggregateID.String(), payload).
		Scan(&ev.ID, &ev.OccurredAt)
	if err != nil {
		return events.Event{}, err
	}
	return ev, nil
}
