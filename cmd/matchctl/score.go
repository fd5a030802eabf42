// cmd/matchctl/score.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
)

var (
	scoreFounderFile string
	scoreFunderFile  string
	scoreSemantic    float64
	scoreMinScore    float64
	scoreLimit       int
	scoreJSON        bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a founder against one or more funders",
	Long: `Scores a founder profile against the funders in a JSON file and
prints them ranked. The funder file holds one funder object or an array.
Semantic similarity comes from the embeddings in the files unless
--semantic overrides it.`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreFounderFile, "founder", "", "founder profile JSON file")
	scoreCmd.Flags().StringVar(&scoreFunderFile, "funders", "", "funder profile JSON file")
	scoreCmd.Flags().Float64Var(&scoreSemantic, "semantic", 0, "precomputed semantic similarity for every funder")
	scoreCmd.Flags().Float64Var(&scoreMinScore, "min-score", 0, "drop funders scoring below this total")
	scoreCmd.Flags().IntVarP(&scoreLimit, "limit", "n", 0, "maximum number of funders to print (0 prints all)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print full score breakdowns as JSON")
	_ = scoreCmd.MarkFlagRequired("founder")
	_ = scoreCmd.MarkFlagRequired("funders")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	var founder models.Founder
	if err := readJSONFile(scoreFounderFile, &founder); err != nil {
		return err
	}
	if err := founder.Validate(); err != nil {
		return err
	}
	funders, err := readFunders(scoreFunderFile)
	if err != nil {
		return err
	}

	cfg, err := scoringConfig()
	if err != nil {
		return err
	}
	scorer, err := matching.NewScorer(cfg)
	if err != nil {
		return err
	}

	inputs := make([]matching.CandidateInput, len(funders))
	for i, f := range funders {
		inputs[i] = matching.CandidateInput{Funder: f}
		if cmd.Flags().Changed("semantic") {
			sim := scoreSemantic
			inputs[i].SemanticScore = &sim
		}
	}

	scored, err := scorer.ScoreCandidates(context.Background(), &founder, inputs)
	if err != nil {
		return fmt.Errorf("score failed: %w", err)
	}
	ranked := matching.Rank(scored, scoreMinScore, scoreLimit)

	if scoreJSON {
		data, err := json.MarshalIndent(ranked, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(ranked) == 0 {
		cmd.Println("No funders above the minimum score.")
		return nil
	}
	for i, c := range ranked {
		b := c.Breakdown
		name := c.Funder.Name
		if name == "" {
			name = c.Funder.ID
		}
		cmd.Printf("[%d] %s  %.4f  %s\n", i+1, name, b.TotalScore, b.QualityTier)
		cmd.Printf("    semantic %.4f  rule %.4f  stage %.4f\n",
			b.Semantic.Contribution, b.Rule.Contribution, b.Stage.Contribution)
		cmd.Printf("    %s\n", b.Rule.Breakdown.IndustryMatch.Reasoning)
		cmd.Printf("    %s\n", b.Stage.Reasoning)
	}
	return nil
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func readFunders(path string) ([]models.Funder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var funders []models.Funder
		if err := json.Unmarshal(data, &funders); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return funders, nil
	}

	var f models.Funder
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []models.Funder{f}, nil
}
