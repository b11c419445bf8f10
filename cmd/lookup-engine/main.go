// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lookup-engine CLI.
// Implements: prd001-providers, prd002-execution, prd003-network-guard,
//
//	prd004-trust, prd005-result-cache, prd006-orchestrator (CLI surface).
//
// See docs/ARCHITECTURE § Engine Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mealworks/lookup-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds provider credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the lookup-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "lookup-engine",
	Short: "Aggregated food lookup across online nutrition catalogs",
	Long: `lookup-engine searches and resolves foods across multiple online nutrition
catalogs (Open Food Facts, USDA FoodData Central, Nutritionix). Results from
all providers are merged into a single deduplicated candidate list with
provenance and data-quality annotations.

Each operation is a subcommand: search, barcode, providers, and cache.
Provider credentials live in .secrets/; engine settings in
lookup-engine.yaml.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lookup-engine.yaml or ~/.config/lookup-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging and the static sample provider")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lookup-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lookup-engine"))
		}
	}

	viper.SetEnvPrefix("LOOKUP_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
