package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/baechuer/event-hub/internal/domain"
)

const insertRegistrationSQL = `
INSERT INTO registrations (event_id, user_id, registered_at, status)
VALUES ($1, $2, $3, $4)
ON CONFLICT (event_id, user_id) DO NOTHING
RETURNING ` + registrationColumns

const takeSeatSQL = `
UPDATE events
SET registered_attendees = registered_attendees + 1
WHERE id = $1 AND registered_attendees < capacity
RETURNING ` + eventColumns

const deleteRegistrationSQL = `DELETE FROM registrations WHERE id = $1 AND event_id = $2`

const returnSeatSQL = `
UPDATE events
SET registered_attendees = GREATEST(registered_attendees - 1, 0)
WHERE id = $1
RETURNING ` + eventColumns

// Seats books seats in one transaction, so the capacity check and the
// registration insert commit or roll back together.
type Seats struct {
	db *sql.DB
}

func NewSeats(db *sql.DB) *Seats { return &Seats{db: db} }

func (s *Seats) Reserve(ctx context.Context, ev domain.Event, reg domain.Registration) (domain.Registration, domain.Event, error) {
	eventID, ok := rowID(ev.ID)
	if !ok {
		return domain.Registration{}, domain.Event{}, domain.ErrNotFound("event")
	}

	var (
		created domain.Registration
		updated domain.Event
	)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		created, err = scanRegistration(tx.QueryRowContext(ctx, insertRegistrationSQL,
			eventID, reg.UserID.String(), reg.RegisteredAt, string(reg.Status)))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrAlreadyRegistered()
		}
		if err != nil {
			return err
		}

		updated, err = scanEvent(tx.QueryRowContext(ctx, takeSeatSQL, eventID))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventFull()
		}
		return err
	})
	if err != nil {
		return domain.Registration{}, domain.Event{}, err
	}
	return created, updated, nil
}

func (s *Seats) Release(ctx context.Context, ev domain.Event, reg domain.Registration) (domain.Event, error) {
	eventID, ok := rowID(ev.ID)
	if !ok {
		return domain.Event{}, domain.ErrNotFound("event")
	}
	regID, ok := rowID(reg.ID)
	if !ok {
		return domain.Event{}, domain.ErrNotFound("registration")
	}

	var updated domain.Event
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, deleteRegistrationSQL, regID, eventID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrNotFound("registration")
		}
		updated, err = scanEvent(tx.QueryRowContext(ctx, returnSeatSQL, eventID))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound("event")
		}
		return err
	})
	if err != nil {
		return domain.Event{}, err
	}
	return updated, nil
}
