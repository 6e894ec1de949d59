package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/event-hub/internal/domain"
)

const registrationColumns = `id, event_id, user_id, registered_at, status`

type RegistrationRepo struct {
	db *sql.DB
}

func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

func scanRegistration(s scanner) (domain.Registration, error) {
	var (
		reg     domain.Registration
		id      int64
		eventID int64
		userID  string
		status  string
	)
	if err := s.Scan(&id, &eventID, &userID, &reg.RegisteredAt, &status); err != nil {
		return domain.Registration{}, err
	}
	reg.ID = toID(id)
	reg.EventID = toID(eventID)
	reg.UserID = domain.ID(userID)
	reg.Status = domain.RegistrationStatus(status)
	return reg, nil
}

func (r *RegistrationRepo) List(ctx context.Context) ([]domain.Registration, error) {
	return r.query(ctx, `SELECT `+registrationColumns+` FROM registrations ORDER BY id`)
}

func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID domain.ID) ([]domain.Registration, error) {
	id, ok := rowID(eventID)
	if !ok {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 ORDER BY id`, id)
}

func (r *RegistrationRepo) query(ctx context.Context, q string, args ...any) ([]domain.Registration, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}
