package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryDetail is one line of a day's profit breakdown. Offline marks
// entries produced by the catch-up reconciler rather than the live cycle.
type HistoryDetail struct {
	Name    string          `json:"name"`
	Value   decimal.Decimal `json:"value"`
	Yield   decimal.Decimal `json:"yield"`
	Offline bool            `json:"offline,omitempty"`
}

// DailyHistory aggregates one calendar day of accrual for a user. There is at
// most one record per user per day; both the live engine and the reconciler
// merge into the same row.
type DailyHistory struct {
	HistoryID   string          `json:"historyID"` // Primary Key (UUID)
	UserID      string          `json:"userID"`
	Date        time.Time       `json:"date"` // Midnight anchor of the day
	TotalProfit decimal.Decimal `json:"totalProfit"`
	Details     []HistoryDetail `json:"details"`
	AuditFields
}

// DayKey truncates t to its calendar-day anchor in UTC, the key under which
// history rows are merged.
func DayKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
