package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dukaan-pos/dukaan/app/models"
)

// OpenSession is the audit projection of one open cash session: enough to
// log who left which counter open.
type OpenSession struct {
	ID          uint
	CashierName string
	CounterName string
	OpenedAt    time.Time
}

// SessionStore is what the closure job needs from the remote store.
type SessionStore interface {
	FindOpenSessions(ctx context.Context) ([]OpenSession, error)
	CloseAllOpen(ctx context.Context, at time.Time) (int64, error)
}

// Sessions is the gorm-backed SessionStore.
type Sessions struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db}
}

// FindOpenSessions returns every session still Open, joined with cashier
// and counter names for the audit trail.
func (r *Sessions) FindOpenSessions(ctx context.Context) ([]OpenSession, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	var out []OpenSession
	err := r.db.WithContext(ctx).
		Model(&models.CashSession{}).
		Select("cash_sessions.id, cash_sessions.opened_at, users.name AS cashier_name, counters.name AS counter_name").
		Joins("LEFT JOIN users ON users.id = cash_sessions.user_id").
		Joins("LEFT JOIN counters ON counters.id = cash_sessions.counter_id").
		Where("cash_sessions.status_id = ?", models.SessionOpen).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: find open sessions: %v", ErrRemoteUnavailable, err)
	}
	return out, nil
}

// CloseAllOpen transitions every currently-Open session to Closed in one
// conditional update and returns the number of rows transitioned. Sessions
// already Closed are untouched — the WHERE clause is the compare half of
// the compare-and-set, so ClosedAt is written exactly once per session.
func (r *Sessions) CloseAllOpen(ctx context.Context, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteCallTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&models.CashSession{}).
		Where("status_id = ?", models.SessionOpen).
		Updates(map[string]interface{}{
			"status_id": models.SessionClosed,
			"closed_at": at,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: close open sessions: %v", ErrRemoteUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}
