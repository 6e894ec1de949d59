package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/baechuer/event-hub/internal/domain"
)

const eventColumns = `id, title, description, event_date, event_time, location, capacity,
       registered_attendees, price, category, status, created_by, created_at, updated_at`

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func scanEvent(s scanner) (domain.Event, error) {
	var (
		e         domain.Event
		id        int64
		category  string
		status    string
		createdBy string
		updatedAt sql.NullTime
	)
	err := s.Scan(
		&id, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Capacity,
		&e.RegisteredAttendees, &e.Price, &category, &status, &createdBy, &e.CreatedAt, &updatedAt,
	)
	if err != nil {
		return domain.Event{}, err
	}
	e.ID = toID(id)
	e.Category = domain.Category(category)
	e.Status = domain.EventStatus(status)
	e.CreatedBy = domain.ID(createdBy)
	if updatedAt.Valid {
		t := updatedAt.Time
		e.UpdatedAt = &t
	}
	return e, nil
}

func (r *EventRepo) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepo) Get(ctx context.Context, id domain.ID) (domain.Event, error) {
	n, ok := rowID(id)
	if !ok {
		return domain.Event{}, domain.ErrNotFound("event")
	}
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, domain.ErrNotFound("event")
	}
	return e, err
}

func (r *EventRepo) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO events (title, description, event_date, event_time, location, capacity,
                    registered_attendees, price, category, status, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING `+eventColumns,
		e.Title, e.Description, e.Date, e.Time, e.Location, e.Capacity,
		e.RegisteredAttendees, e.Price, string(e.Category), string(e.Status), e.CreatedBy.String(), e.CreatedAt,
	)
	return scanEvent(row)
}

// Update rewrites the editable columns. registered_attendees belongs to Seats.
func (r *EventRepo) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	n, ok := rowID(e.ID)
	if !ok {
		return domain.Event{}, domain.ErrNotFound("event")
	}
	row := r.db.QueryRowContext(ctx, `
UPDATE events SET
  title = $2, description = $3, event_date = $4, event_time = $5, location = $6,
  capacity = $7, price = $8, category = $9, status = $10, updated_at = $11
WHERE id = $1
RETURNING `+eventColumns,
		n, e.Title, e.Description, e.Date, e.Time, e.Location,
		e.Capacity, e.Price, string(e.Category), string(e.Status), e.UpdatedAt,
	)
	updated, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, domain.ErrNotFound("event")
	}
	return updated, err
}

func (r *EventRepo) Delete(ctx context.Context, id domain.ID) error {
	n, ok := rowID(id)
	if !ok {
		return domain.ErrNotFound("event")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, n)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrNotFound("event")
	}
	return nil
}
