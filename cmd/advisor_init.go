package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/site-advisor/internal/advisor"
	"github.com/sells-group/site-advisor/internal/config"
	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/resilience"
)

// advisorEnv holds the backend client and the fetcher behind it.
type advisorEnv struct {
	Client   *advisor.Client
	Fetcher  *fetcher.HTTPFetcher
	Breakers *resilience.ServiceBreakers // may be nil
}

// initAdvisor validates the config for mode and builds the backend client.
func initAdvisor(mode string) (*advisorEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}
	return newAdvisorEnv(cfg), nil
}

func newAdvisorEnv(c *config.Config) *advisorEnv {
	env := &advisorEnv{}

	retry := resilience.FromRetryConfig(
		c.Retry.MaxAttempts,
		c.Retry.InitialBackoffMs,
		c.Retry.MaxBackoffMs,
		c.Retry.Multiplier,
		c.Retry.JitterFraction,
	)

	opts := []fetcher.Option{
		fetcher.WithRetry(retry),
		fetcher.WithUserAgent(c.Backend.UserAgent),
		fetcher.WithRateLimiter(c.RateLimit.RPS, c.RateLimit.Burst),
	}
	if c.Backend.TimeoutSecs > 0 {
		opts = append(opts, fetcher.WithHTTPClient(&http.Client{
			Timeout: time.Duration(c.Backend.TimeoutSecs) * time.Second,
		}))
	}
	if cbCfg := resilience.FromCircuitConfig(c.Circuit.FailureThreshold, c.Circuit.ResetTimeoutSecs); cbCfg != nil {
		cbCfg.ShouldTrip = fetcher.ShouldTrip
		env.Breakers = resilience.NewServiceBreakers(*cbCfg)
		opts = append(opts, fetcher.WithBreakers(env.Breakers))
	}
	env.Fetcher = fetcher.New(opts...)

	env.Client = advisor.NewClient(env.Fetcher,
		advisor.WithBaseURL(c.Backend.BaseURL),
		advisor.WithMaxAttempts(retry.MaxAttempts),
	)

	zap.L().Debug("advisor client ready",
		zap.String("base_url", env.Client.BaseURL()),
		zap.Int("max_attempts", retry.MaxAttempts),
		zap.Bool("circuit_breaker", env.Breakers != nil),
		zap.Float64("rate_limit_rps", c.RateLimit.RPS),
	)
	return env
}
