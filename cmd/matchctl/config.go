// cmd/matchctl/config.go
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"phalanx-matcher/internal/matching"
)

type scoringView struct {
	Weights            matching.Weights        `json:"weights"`
	RuleWeights        matching.RuleWeights    `json:"rule_weights"`
	TierThresholds     matching.TierThresholds `json:"tier_thresholds"`
	CompletenessFields []string                `json:"completeness_fields"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective scoring configuration as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := scoringConfig()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(scoringView{
			Weights:            cfg.Weights,
			RuleWeights:        cfg.RuleWeights,
			TierThresholds:     cfg.TierThresholds,
			CompletenessFields: cfg.CompletenessFields(),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		cmd.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
