// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mealworks/lookup-engine/internal/cache"
	"github.com/mealworks/lookup-engine/internal/executor"
	"github.com/mealworks/lookup-engine/internal/guard"
	"github.com/mealworks/lookup-engine/internal/logging"
	"github.com/mealworks/lookup-engine/internal/lookup"
	"github.com/mealworks/lookup-engine/internal/registry"
	"github.com/mealworks/lookup-engine/pkg/types"
)

// engine bundles the assembled components for one CLI invocation.
type engine struct {
	cfg          types.LookupConfig
	orchestrator *lookup.Orchestrator
	cache        *cache.Cache
	log          *zap.SugaredLogger
}

func (e *engine) close() {
	if e.cache != nil {
		e.cache.Close()
	}
	e.log.Sync()
}

// buildConfig resolves engine configuration from viper (config file and
// LOOKUP_ENGINE_* environment variables) with built-in defaults.
func buildConfig(cmd *cobra.Command) types.LookupConfig {
	viper.SetDefault("online_lookup_enabled", true)
	viper.SetDefault("user_agent", "lookup-engine/"+version)
	viper.SetDefault("http_timeout", "10s")
	viper.SetDefault("providers.open_food_facts.enabled", true)
	viper.SetDefault("providers.usda_fdc.enabled", true)
	viper.SetDefault("providers.nutritionix.enabled", true)
	viper.SetDefault("providers.static_sample.enabled", true)
	viper.SetDefault("executor.provider_timeout", "6s")
	viper.SetDefault("executor.global_timeout", "10s")
	viper.SetDefault("cache.path", "cache/lookup.db")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("guard.validity", "60s")

	debug := viper.GetBool("debug")
	if f, _ := cmd.Flags().GetBool("debug"); f {
		debug = true
	}

	return types.LookupConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("http_timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		OnlineLookupEnabled: viper.GetBool("online_lookup_enabled"),
		Debug:               debug,
		Providers: types.ProvidersConfig{
			OpenFoodFacts: providerSettings("providers.open_food_facts"),
			USDAFDC:       providerSettings("providers.usda_fdc"),
			Nutritionix:   providerSettings("providers.nutritionix"),
			StaticSample:  providerSettings("providers.static_sample"),
		},
		Executor: types.ExecutorConfig{
			ProviderTimeout: viper.GetDuration("executor.provider_timeout"),
			GlobalTimeout:   viper.GetDuration("executor.global_timeout"),
		},
		Cache: types.CacheConfig{
			Path: viper.GetString("cache.path"),
			TTL:  viper.GetDuration("cache.ttl"),
		},
		Guard: types.GuardConfig{
			Validity: viper.GetDuration("guard.validity"),
		},
	}
}

func providerSettings(key string) types.ProviderSettings {
	return types.ProviderSettings{
		Enabled:  viper.GetBool(key + ".enabled"),
		Priority: viper.GetInt(key + ".priority"),
	}
}

// newEngine assembles the full component stack: logger, registry, guard,
// cache, executor, orchestrator.
func newEngine(cmd *cobra.Command) (*engine, error) {
	cfg := buildConfig(cmd)
	log := logging.New(cfg.Debug)

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	reg, err := registry.New(cfg, loadedSecrets, httpClient)
	if err != nil {
		return nil, fmt.Errorf("building provider registry: %w", err)
	}

	store, err := cache.NewStore(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("opening result cache: %w", err)
	}
	resultCache := cache.New(store, cfg.Cache.TTL, log)

	validity := cfg.Guard.Validity
	if validity <= 0 {
		validity = guard.DefaultValidity
	}
	g := guard.New(validity)

	exec := executor.New(reg, g, resultCache, cfg.Executor, log)
	return &engine{
		cfg:          cfg,
		orchestrator: lookup.New(reg, exec, g, log),
		cache:        resultCache,
		log:          log,
	}, nil
}
