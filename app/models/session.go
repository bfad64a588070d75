package models

import "time"

// Cash session status ids, as stored by the remote schema.
// Transitions go Open→Closed only, and ClosedAt is set exactly once.
const (
	SessionOpen   uint = 1
	SessionClosed uint = 2
)

// CashSession is the time-bounded record of a cashier's till being open.
// It lives in the remote store only — it is never mirrored into the cache —
// and is mutated solely by an explicit close or the end-of-day closure job.
type CashSession struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	CounterID uint       `gorm:"not null;index" json:"counter_id"`
	StatusID  uint       `gorm:"not null;index" json:"status_id"`
	OpenedAt  time.Time  `json:"opened_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`

	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Counter Counter `gorm:"foreignKey:CounterID" json:"counter,omitempty"`
}
