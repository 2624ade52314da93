package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentType classifies a fixed-income position for tax purposes.
type InvestmentType string

const (
	// TypeCDB is a standard taxable certificate (IOF + regressive IR apply).
	TypeCDB InvestmentType = "CDB"
	// TypeIPCAPlus is inflation-indexed: the configured inflation spread is
	// added on top of the derived annual rate. Taxed like a CDB.
	TypeIPCAPlus InvestmentType = "IPCA_PLUS"
	// TypeLCI and TypeLCA are income-tax exempt housing/agro letters.
	TypeLCI InvestmentType = "LCI"
	TypeLCA InvestmentType = "LCA"
)

// TaxExempt reports whether income tax is withheld from this type's yield.
// IOF still applies to exempt types during the first 30 days.
func (t InvestmentType) TaxExempt() bool {
	return t == TypeLCI || t == TypeLCA
}

// Valid reports whether t is one of the closed set of investment types.
func (t InvestmentType) Valid() bool {
	switch t {
	case TypeCDB, TypeIPCAPlus, TypeLCI, TypeLCA:
		return true
	}
	return false
}

// YieldMode selects how the annual rate is derived from the rate quota.
type YieldMode string

const (
	// YieldPost derives the rate as quota% of the benchmark (CDI) rate.
	YieldPost YieldMode = "POST"
	// YieldPre uses the quota directly as an absolute annual percentage.
	YieldPre YieldMode = "PRE"
)

// Valid reports whether m is a known yield mode.
func (m YieldMode) Valid() bool {
	return m == YieldPost || m == YieldPre
}

// Investment is one simulated fixed-income position ("machine").
// Value accumulates yield in place; principal and earned interest are not
// separated after creation. CreatedAt (from AuditFields) anchors both the IOF
// decay curve and the IR bracket and must never change after creation.
type Investment struct {
	InvestmentID string          `json:"investmentID"` // Primary Key (UUID)
	UserID       string          `json:"userID"`       // Owner
	Name         string          `json:"name"`
	Value        decimal.Decimal `json:"value"`     // Current monetary value
	RateQuota    decimal.Decimal `json:"rateQuota"` // Percent of benchmark (POST) or absolute annual % (PRE)
	Type         InvestmentType  `json:"type"`
	YieldMode    YieldMode       `json:"yieldMode"`
	DailyYield   decimal.Decimal `json:"dailyYield"` // Intra-day accrual accumulator, resets each calendar day
	MaturityAt   *time.Time      `json:"maturityAt,omitempty"`
	// CapacityTarget is an informational ceiling for progress display only;
	// it never gates accrual or contributions.
	CapacityTarget *decimal.Decimal `json:"capacityTarget,omitempty"`
	AuditFields
}

// MinRemainder is the smallest value a partial withdrawal may leave behind.
// A withdrawal leaving 0 < remainder < MinRemainder is rejected; a full
// withdrawal destroys the record instead.
var MinRemainder = decimal.NewFromInt(1)

// Matured reports whether the redemption lock has lifted at the given instant.
// Positions without a maturity date are always redeemable.
func (i Investment) Matured(now time.Time) bool {
	return i.MaturityAt == nil || !now.Before(*i.MaturityAt)
}
