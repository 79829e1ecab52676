package auditlog

import (
	"context"
	"database/sql"
	"inzetbooster/lib/auditlog/db"
	"inzetbooster/lib/timezone"
	"time"
)

// Store remembers which notifications went out so reruns do not mail
// people twice.
//
// WasNotified followed by RecordNotification is not atomic, two processes
// sharing one store can both decide to send. Runs are expected to be
// sequential.
type Store struct {
	qry *db.Queries
	now func() time.Time
}

type Entry struct {
	ID        int64
	Time      time.Time
	ShiftID   int
	ContentID string
	Email     string
	MessageID string
}

// Open creates the schema if needed and returns a store backed by database.
func Open(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return Store{}, err
	}
	return Store{
		qry: db.New(database),
		now: timezone.Now,
	}, nil
}

func (s Store) WasNotified(ctx context.Context, shiftID int, contentID, email string) (bool, error) {
	found, err := s.qry.WasMailSent(ctx, db.WasMailSentParams{
		ShiftID:   int64(shiftID),
		ContentID: contentID,
		Email:     email,
	})
	if err != nil {
		return false, err
	}
	return found != 0, nil
}

func (s Store) RecordNotification(ctx context.Context, shiftID int, contentID, email, messageID string) error {
	return s.qry.LogMail(ctx, db.LogMailParams{
		Ts:        s.now().Unix(),
		ShiftID:   int64(shiftID),
		ContentID: contentID,
		Email:     email,
		MsgID:     messageID,
	})
}

// List returns the most recent entries first.
func (s Store) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.qry.GetRecentMail(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{
			ID:        r.ID,
			Time:      time.Unix(r.Ts, 0).In(timezone.Location),
			ShiftID:   int(r.ShiftID),
			ContentID: r.ContentID,
			Email:     r.Email,
			MessageID: r.MsgID,
		}
	}
	return entries, nil
}
