package cmd

import (
	"fmt"
	"time"

	"github.com/arubanetworks/central-cli/internal/api"
	"github.com/arubanetworks/central-cli/internal/config"
)

type clientFactory struct {
	timeout   time.Duration
	userAgent string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("central-cli/%s", version),
	}
}

func (f *clientFactory) account() (*api.Client, error) {
	account, err := config.LoadAccount()
	if err != nil {
		return nil, err
	}
	return f.newClient(account), nil
}

func (f *clientFactory) newClient(account config.Account) *api.Client {
	client := api.New(account.BaseURL, account.AccessToken)
	if f.timeout > 0 {
		client.HTTP.Timeout = f.timeout
	}
	if f.userAgent != "" {
		client.UserAgent = f.userAgent
	}
	applyRetryOverrides(client)
	return client
}

func applyRetryOverrides(client *api.Client) {
	cfg := client.RetryConfig

	if flags.MaxRateLimitRetriesSet {
		cfg.MaxRateLimitRetries = flags.MaxRateLimitRetries
	}
	if flags.Max5xxRetriesSet {
		cfg.Max5xxRetries = flags.Max5xxRetries
	}
	if flags.RateLimitDelaySet {
		cfg.RateLimitBaseDelay = flags.RateLimitDelay
	}
	if flags.ServerErrorDelaySet {
		cfg.ServerErrorRetryDelay = flags.ServerErrorDelay
	}
	if flags.CircuitBreakerThresholdSet {
		cfg.CircuitBreakerThreshold = flags.CircuitBreakerThreshold
	}
	if flags.CircuitBreakerResetTimeSet {
		cfg.CircuitBreakerResetTime = flags.CircuitBreakerResetTime
	}

	client.SetRetryConfig(cfg)
}
