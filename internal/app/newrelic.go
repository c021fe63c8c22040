package app

import (
	"log"

	"github.com/newrelic/go-agent/v3/newrelic"

	"bikeride/internal/config"
)

// NewRelicApp starts the New Relic agent, or returns nil when it is disabled
// or fails to start.
func NewRelicApp(cfg config.NewRelicConfig) *newrelic.Application {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil
	}

	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		log.Printf("failed to initialize New Relic: %v", err)
		return nil
	}
	log.Printf("New Relic enabled: app=%s", cfg.AppName)
	return nrApp
}
