package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/schedule-app/backend/internal/model"
	"github.com/schedule-app/backend/internal/service"
)

var _ service.ScheduleStore = (*Postgres)(nil)

const eventColumns = `id, user_id, title, description, location, starts_at, ends_at, created_at, updated_at`

func (db *Postgres) ListEvents(ctx context.Context, userID string) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM schedule_events WHERE user_id = $1 ORDER BY starts_at`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (db *Postgres) GetEvent(ctx context.Context, userID, eventID string) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM schedule_events WHERE id = $1 AND user_id = $2`
	var e model.Event
	if err := scanEvent(db.Pool.QueryRow(ctx, query, eventID, userID), &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (db *Postgres) CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO schedule_events (id, user_id, title, description, location, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + eventColumns
	var e model.Event
	row := db.Pool.QueryRow(ctx, query,
		event.ID, event.UserID, event.Title, event.Description, event.Location,
		event.StartsAt, event.EndsAt, event.CreatedAt, event.UpdatedAt)
	if err := scanEvent(row, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (db *Postgres) UpdateEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := `
		UPDATE schedule_events
		SET title = $1, description = $2, location = $3, starts_at = $4, ends_at = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING ` + eventColumns
	var e model.Event
	row := db.Pool.QueryRow(ctx, query,
		event.Title, event.Description, event.Location, event.StartsAt, event.EndsAt,
		event.ID, event.UserID)
	if err := scanEvent(row, &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (db *Postgres) DeleteEvent(ctx context.Context, userID, eventID string) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM schedule_events WHERE id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return service.ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row, e *model.Event) error {
	return row.Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.StartsAt,
		&e.EndsAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}
