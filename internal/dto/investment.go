package dto

import (
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/core/fincalc"
	"github.com/shopspring/decimal"
)

// CreateInvestmentRequest defines the data needed to allocate capital into a
// new position.
type CreateInvestmentRequest struct {
	Name      string                `json:"name" binding:"required"`
	Value     decimal.Decimal       `json:"value" binding:"required"`
	RateQuota decimal.Decimal       `json:"rateQuota" binding:"required"`
	Type      domain.InvestmentType `json:"type" binding:"required,oneof=CDB IPCA_PLUS LCI LCA"`
	YieldMode domain.YieldMode      `json:"yieldMode" binding:"required,oneof=POST PRE"`
	// BackdatedCreatedAt anchors the tax clock in the past. Only honored at
	// creation; the timestamp is immutable afterwards.
	BackdatedCreatedAt *time.Time       `json:"backdatedCreatedAt"`
	MaturityAt         *time.Time       `json:"maturityAt"`
	CapacityTarget     *decimal.Decimal `json:"capacityTarget"`
}

// UpdateInvestmentRequest defines the fields that may change after creation.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateInvestmentRequest struct {
	Name           *string          `json:"name"`
	RateQuota      *decimal.Decimal `json:"rateQuota"`
	MaturityAt     *time.Time       `json:"maturityAt"`
	CapacityTarget *decimal.Decimal `json:"capacityTarget"`
}

// ContributeRequest moves free capital into an existing position.
type ContributeRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// WithdrawRequest redeems capital from a position. Full redeems everything
// and destroys the record regardless of Amount.
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Full   bool            `json:"full"`
}

// WithdrawResult reports the outcome of a redemption.
type WithdrawResult struct {
	Redeemed   decimal.Decimal `json:"redeemed"`
	Remainder  decimal.Decimal `json:"remainder"`
	Closed     bool            `json:"closed"` // True when the record was destroyed
	NewBalance decimal.Decimal `json:"newBalance"`
}

// ProjectionRequest asks for a before/after yield comparison with a signed
// contribution (positive) or withdrawal (negative) delta.
type ProjectionRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// InvestmentResponse defines the data returned for an investment, including
// its current tax standing for display.
type InvestmentResponse struct {
	InvestmentID     string                `json:"investmentID"`
	Name             string                `json:"name"`
	Value            decimal.Decimal       `json:"value"`
	RateQuota        decimal.Decimal       `json:"rateQuota"`
	Type             domain.InvestmentType `json:"type"`
	YieldMode        domain.YieldMode      `json:"yieldMode"`
	DailyYield       decimal.Decimal       `json:"dailyYield"`
	MaturityAt       *time.Time            `json:"maturityAt,omitempty"`
	CapacityTarget   *decimal.Decimal      `json:"capacityTarget,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	IRRateLabel      string                `json:"irRateLabel"`
	IRExempt         bool                  `json:"irExempt"`
	IOFApplied       bool                  `json:"iofApplied"`
	DaysUntilIOFZero int                   `json:"daysUntilIofZero"`
}

// ToInvestmentResponse converts a domain.Investment plus its tax standing at
// the reference instant into the response DTO.
func ToInvestmentResponse(inv *domain.Investment, now time.Time) InvestmentResponse {
	createdAt := inv.CreatedAt
	tax := fincalc.Multipliers(&createdAt, now, false, inv.Type)
	return InvestmentResponse{
		InvestmentID:     inv.InvestmentID,
		Name:             inv.Name,
		Value:            inv.Value,
		RateQuota:        inv.RateQuota,
		Type:             inv.Type,
		YieldMode:        inv.YieldMode,
		DailyYield:       inv.DailyYield,
		MaturityAt:       inv.MaturityAt,
		CapacityTarget:   inv.CapacityTarget,
		CreatedAt:        inv.CreatedAt,
		IRRateLabel:      tax.IRRateLabel,
		IRExempt:         tax.IRExempt,
		IOFApplied:       tax.IOFApplied,
		DaysUntilIOFZero: tax.DaysUntilIOFZero,
	}
}

// ToListInvestmentResponse converts a slice of investments.
func ToListInvestmentResponse(investments []domain.Investment, now time.Time) []InvestmentResponse {
	res := make([]InvestmentResponse, len(investments))
	for i := range investments {
		res[i] = ToInvestmentResponse(&investments[i], now)
	}
	return res
}
