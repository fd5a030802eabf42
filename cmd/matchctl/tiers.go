// cmd/matchctl/tiers.go
package main

import (
	"github.com/spf13/cobra"

	"phalanx-matcher/internal/models"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "List the quality tiers and their score thresholds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := scoringConfig()
		if err != nil {
			return err
		}
		t := cfg.TierThresholds
		floors := map[models.QualityTier]float64{
			models.TierExcellent: t.Excellent,
			models.TierGood:      t.Good,
			models.TierFair:      t.Fair,
			models.TierPoor:      0,
		}
		for _, tier := range models.QualityTiers() {
			info := models.GetTierInfo(tier)
			cmd.Printf("%-10s >= %.2f  %s  %s\n", info.Label, floors[tier], info.Color, info.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tiersCmd)
}
