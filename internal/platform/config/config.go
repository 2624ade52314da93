package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Accrual engine
	TickSeconds      int64
	BigWinThreshold  decimal.Decimal
	HistoryRetention time.Duration

	// Market data sources and fallbacks
	SelicURL          string
	FXURL             string
	FallbackSelic     decimal.Decimal
	CDISpread         decimal.Decimal
	InflationAnnual   decimal.Decimal
	USDSavingsAPY     decimal.Decimal
	FallbackUSDRate   decimal.Decimal
	FallbackJPYRate   decimal.Decimal
	RatesRefreshEvery time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "24h")
	viper.SetDefault("JWT_ISSUER", "cdi-sim-app")

	viper.SetDefault("TICK_SECONDS", 10)
	viper.SetDefault("BIG_WIN_THRESHOLD", "50")
	viper.SetDefault("HISTORY_RETENTION", "72h")

	viper.SetDefault("SELIC_URL", "https://api.bcb.gov.br/dados/serie/bcdata.sgs.432/dados/ultimos/1?formato=json")
	viper.SetDefault("FX_URL", "https://economia.awesomeapi.com.br/json/last/USD-BRL")
	viper.SetDefault("FALLBACK_SELIC", "0.15")
	viper.SetDefault("CDI_SPREAD", "0.0010")
	viper.SetDefault("INFLATION_ANNUAL", "0.045")
	viper.SetDefault("USD_SAVINGS_APY", "0.035")
	viper.SetDefault("FALLBACK_USD_RATE", "5.37")
	viper.SetDefault("FALLBACK_JPY_RATE", "0.035")
	viper.SetDefault("RATES_REFRESH_EVERY", "15m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	cfg.JWTExpiryDuration = viper.GetDuration("JWT_EXPIRY_DURATION")
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.TickSeconds = viper.GetInt64("TICK_SECONDS")
	cfg.HistoryRetention = viper.GetDuration("HISTORY_RETENTION")

	cfg.SelicURL = viper.GetString("SELIC_URL")
	cfg.FXURL = viper.GetString("FX_URL")
	cfg.RatesRefreshEvery = viper.GetDuration("RATES_REFRESH_EVERY")

	var err error
	if cfg.BigWinThreshold, err = decimal.NewFromString(viper.GetString("BIG_WIN_THRESHOLD")); err != nil {
		return nil, err
	}
	if cfg.FallbackSelic, err = decimal.NewFromString(viper.GetString("FALLBACK_SELIC")); err != nil {
		return nil, err
	}
	if cfg.CDISpread, err = decimal.NewFromString(viper.GetString("CDI_SPREAD")); err != nil {
		return nil, err
	}
	if cfg.InflationAnnual, err = decimal.NewFromString(viper.GetString("INFLATION_ANNUAL")); err != nil {
		return nil, err
	}
	if cfg.USDSavingsAPY, err = decimal.NewFromString(viper.GetString("USD_SAVINGS_APY")); err != nil {
		return nil, err
	}
	if cfg.FallbackUSDRate, err = decimal.NewFromString(viper.GetString("FALLBACK_USD_RATE")); err != nil {
		return nil, err
	}
	if cfg.FallbackJPYRate, err = decimal.NewFromString(viper.GetString("FALLBACK_JPY_RATE")); err != nil {
		return nil, err
	}

	return cfg, nil
}
