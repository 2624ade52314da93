package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// MarketDataConfig carries the rate sources and the documented fallbacks used
// when a source is unreachable.
type MarketDataConfig struct {
	SelicURL        string
	FXURL           string
	FallbackSelic   decimal.Decimal // Annual rate, e.g. 0.15
	CDISpread       decimal.Decimal // Subtracted from SELIC to derive CDI
	InflationAnnual decimal.Decimal
	ForeignAPY      map[string]decimal.Decimal
	FallbackFX      map[string]decimal.Decimal
	RefreshInterval time.Duration
	HTTPTimeout     time.Duration
}

// marketDataServiceImpl fetches external rates lazily and serves a cached
// snapshot in between refreshes. It never returns an error: any fetch or
// parse failure falls back to the configured defaults, because a stale or
// default rate is preferable to a stalled accrual engine.
type marketDataServiceImpl struct {
	BaseService
	cfg    MarketDataConfig
	client *http.Client

	mu     sync.Mutex
	cached domain.MarketRates
}

// NewMarketDataService creates the market data service.
func NewMarketDataService(cfg MarketDataConfig) portssvc.MarketDataSvc {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &marketDataServiceImpl{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

var _ portssvc.MarketDataSvc = (*marketDataServiceImpl)(nil)

func (s *marketDataServiceImpl) Rates(ctx context.Context) domain.MarketRates {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cached.FetchedAt.IsZero() && time.Since(s.cached.FetchedAt) < s.cfg.RefreshInterval {
		return s.cached
	}

	selic := s.fetchSelic(ctx)
	benchmark := selic.Sub(s.cfg.CDISpread)

	fx := make(map[string]decimal.Decimal, len(s.cfg.FallbackFX))
	for code, rate := range s.cfg.FallbackFX {
		fx[code] = rate
	}
	s.fetchFX(ctx, fx)

	s.cached = domain.MarketRates{
		BenchmarkAnnual: benchmark,
		InflationAnnual: s.cfg.InflationAnnual,
		ForeignAPY:      s.cfg.ForeignAPY,
		FX:              fx,
		FetchedAt:       time.Now(),
	}
	return s.cached
}

// fetchSelic pulls the latest SELIC observation from the central bank series.
// The API reports decimal values with a comma separator.
func (s *marketDataServiceImpl) fetchSelic(ctx context.Context) decimal.Decimal {
	if s.cfg.SelicURL == "" {
		return s.cfg.FallbackSelic
	}

	body, err := s.get(ctx, s.cfg.SelicURL)
	if err != nil {
		s.LogWarn(ctx, "SELIC fetch failed, using fallback", slog.String("error", err.Error()))
		return s.cfg.FallbackSelic
	}

	var observations []struct {
		Valor string `json:"valor"`
	}
	if err := json.Unmarshal(body, &observations); err != nil || len(observations) == 0 {
		s.LogWarn(ctx, "SELIC response unparseable, using fallback")
		return s.cfg.FallbackSelic
	}

	raw := strings.ReplaceAll(observations[len(observations)-1].Valor, ",", ".")
	pct, err := decimal.NewFromString(raw)
	if err != nil || !pct.IsPositive() {
		s.LogWarn(ctx, "SELIC value invalid, using fallback", slog.String("valor", raw))
		return s.cfg.FallbackSelic
	}
	// The series reports a percentage (e.g. "15.00" for 15% a.a.).
	return pct.Div(decimal.NewFromInt(100))
}

// fetchFX overlays live ask prices onto the fallback FX table for whatever
// pairs the quote endpoint returns.
func (s *marketDataServiceImpl) fetchFX(ctx context.Context, fx map[string]decimal.Decimal) {
	if s.cfg.FXURL == "" {
		return
	}

	body, err := s.get(ctx, s.cfg.FXURL)
	if err != nil {
		s.LogWarn(ctx, "FX fetch failed, using fallback rates", slog.String("error", err.Error()))
		return
	}

	// awesomeapi keys pairs as e.g. "USDBRL".
	var quotes map[string]struct {
		Code string `json:"code"`
		Ask  string `json:"ask"`
	}
	if err := json.Unmarshal(body, &quotes); err != nil {
		s.LogWarn(ctx, "FX response unparseable, using fallback rates")
		return
	}

	for _, q := range quotes {
		rate, err := decimal.NewFromString(q.Ask)
		if err != nil || !rate.IsPositive() || q.Code == "" {
			continue
		}
		fx[q.Code] = rate
	}
}

func (s *marketDataServiceImpl) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
