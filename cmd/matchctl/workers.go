// cmd/matchctl/workers.go
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	calculatematchscore "phalanx-matcher/internal/workers/matching/calculate-match-score"
	findsimilarfunders "phalanx-matcher/internal/workers/matching/find-similar-funders"
	ingestfounder "phalanx-matcher/internal/workers/matching/ingest-founder"
	notifytopmatches "phalanx-matcher/internal/workers/matching/notify-top-matches"
	rankmatches "phalanx-matcher/internal/workers/matching/rank-matches"
	savematches "phalanx-matcher/internal/workers/matching/save-matches"
	"phalanx-matcher/pkg/registry"
)

// implementedTaskTypes are the job types worker-manager can subscribe to.
var implementedTaskTypes = []string{
	ingestfounder.TaskType,
	findsimilarfunders.TaskType,
	calculatematchscore.TaskType,
	rankmatches.TaskType,
	savematches.TaskType,
	notifytopmatches.TaskType,
}

var registryPath string

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List the registered Camunda activities and check them against the built workers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return err
		}
		if err := reg.Validate(); err != nil {
			return err
		}

		for _, a := range reg.Activities {
			cmd.Printf("%-24s %-12s timeout=%-4s retries=%d  %s\n",
				a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries, strings.Join(a.ErrorCodes, ","))
		}

		missing, unregistered := reg.Diff(implementedTaskTypes)
		if len(missing) > 0 || len(unregistered) > 0 {
			return fmt.Errorf("registry out of sync: missing=%v unregistered=%v", missing, unregistered)
		}
		cmd.Printf("%d activities in sync\n", len(reg.Activities))
		return nil
	},
}

func init() {
	workersCmd.Flags().StringVar(&registryPath, "registry", "configs/activity-registry.json", "path to the activity registry")
	rootCmd.AddCommand(workersCmd)
}
