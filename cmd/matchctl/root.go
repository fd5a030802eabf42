// cmd/matchctl/root.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"phalanx-matcher/internal/common/config"
	"phalanx-matcher/internal/matching"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "matchctl",
	Short: "Score founder/funder pairs and maintain the matcher's data",
	Long: `matchctl scores founder and funder profiles offline with the same
hybrid engine the matcher service runs, prints the active scoring
configuration and backfills missing embeddings.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (defaults to configs/config.yaml)")
}

// loadConfig reads --config when given, otherwise the default search path.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// scoringConfig returns the built-in weights unless --config is set.
func scoringConfig() (matching.Config, error) {
	if configPath == "" {
		return matching.DefaultConfig(), nil
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return matching.Config{}, err
	}
	sc, err := cfg.Matching.ScoringConfig()
	if err != nil {
		return matching.Config{}, fmt.Errorf("scoring config: %w", err)
	}
	return sc, nil
}
