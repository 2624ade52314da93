package dto

import (
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// HistoryEntryResponse is one day of aggregated accrual.
type HistoryEntryResponse struct {
	Date        time.Time              `json:"date"`
	TotalProfit decimal.Decimal        `json:"totalProfit"`
	Details     []domain.HistoryDetail `json:"details"`
}

// ToHistoryResponse converts the repository rows to the API shape.
func ToHistoryResponse(rows []domain.DailyHistory) []HistoryEntryResponse {
	res := make([]HistoryEntryResponse, len(rows))
	for i, h := range rows {
		res[i] = HistoryEntryResponse{
			Date:        h.Date,
			TotalProfit: h.TotalProfit,
			Details:     h.Details,
		}
	}
	return res
}
