package services

import (
	"context"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
)

// MarketDataSvc supplies the external rate snapshot consumed by the engine.
// Implementations cache fetched rates for a configured refresh interval and
// fall back to documented defaults when a source is unreachable, so the
// snapshot is always available.
type MarketDataSvc interface {
	Rates(ctx context.Context) domain.MarketRates
}
