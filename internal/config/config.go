package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	BrevoAPIKey         string // BREVO_API_KEY for lifecycle notification emails
	MailFrom            string // MAIL_FROM sender email (default noreply@boligmatch.dk)
	ValuationAPIURL     string // base URL of the external valuation estimator; empty = no estimates

	Scoring ScoringConfig
}

// ScoringConfig holds the offer-scoring weights and reference knobs.
type ScoringConfig struct {
	PriceWeight         float64 // weight of price competitiveness
	CommissionWeight    float64 // weight of (low) commission
	MarketingWeight     float64 // weight of marketing breadth
	BindingWeight       float64 // weight of (short) binding period
	MarketingChannels   int     // channel count that earns full marketing score
	BindingFloorMonths  int     // binding period at or below which the binding score is maxed
	BindingCapMonths    int     // binding period at or above which the binding score is zero
	CommissionCapFrac   float64 // commission/price fraction at or above which the commission score is zero
	CommissionWarnFloor float64 // commission/price fraction below which a percentage-entry warning is raised
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		BrevoAPIKey:         viper.GetString("BREVO_API_KEY"),
		MailFrom:            mailFrom(viper.GetString("MAIL_FROM")),
		ValuationAPIURL:     viper.GetString("VALUATION_API_URL"),
		Scoring:             loadScoring(),
	}, nil
}

func loadScoring() ScoringConfig {
	return ScoringConfig{
		PriceWeight:         floatOr("SCORE_PRICE_WEIGHT", 0.35),
		CommissionWeight:    floatOr("SCORE_COMMISSION_WEIGHT", 0.30),
		MarketingWeight:     floatOr("SCORE_MARKETING_WEIGHT", 0.20),
		BindingWeight:       floatOr("SCORE_BINDING_WEIGHT", 0.15),
		MarketingChannels:   intOr("SCORE_MARKETING_CHANNELS", 5),
		BindingFloorMonths:  intOr("SCORE_BINDING_FLOOR_MONTHS", 3),
		BindingCapMonths:    intOr("SCORE_BINDING_CAP_MONTHS", 12),
		CommissionCapFrac:   floatOr("SCORE_COMMISSION_CAP_FRAC", 0.03),
		CommissionWarnFloor: floatOr("COMMISSION_WARN_FLOOR", 0.002),
	}
}

func floatOr(key string, def float64) float64 {
	if !viper.IsSet(key) {
		return def
	}
	return viper.GetFloat64(key)
}

func intOr(key string, def int) int {
	if !viper.IsSet(key) {
		return def
	}
	return viper.GetInt(key)
}

func mailFrom(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "noreply@boligmatch.dk"
	}
	return s
}

// DefaultScoring returns the scoring knobs used when no env config is
// loaded (tests, standalone scoring).
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		PriceWeight:         0.35,
		CommissionWeight:    0.30,
		MarketingWeight:     0.20,
		BindingWeight:       0.15,
		MarketingChannels:   5,
		BindingFloorMonths:  3,
		BindingCapMonths:    12,
		CommissionCapFrac:   0.03,
		CommissionWarnFloor: 0.002,
	}
}
