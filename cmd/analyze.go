package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/triage/internal/analysis"
	"github.com/danielolaszy/triage/internal/logging"
)

// analyzeCmd fetches all matching tickets, scores them and prints the batch
// report as JSON.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze tickets of a project and print the derived ai_ fields",
	Long: `Analyze all tickets of a Jira Product Discovery project.

Every ticket matching the project and status filter is fetched, scored
with the configured engine, and reported with its derived ai_ fields.
Tickets that fail to score are reported with an error instead; one broken
ticket never aborts the batch.

Example:
  triage analyze -p WD -s 未着手 -l 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := cmd.Flags().GetString("project")
		if err != nil {
			return err
		}
		if project == "" {
			return fmt.Errorf("project flag is required")
		}

		status, err := cmd.Flags().GetString("status")
		if err != nil {
			return err
		}

		limitStr, err := cmd.Flags().GetString("limit")
		if err != nil {
			return err
		}

		engineFlag, err := cmd.Flags().GetString("engine")
		if err != nil {
			return err
		}

		service, cfg, err := buildService(engineFlag)
		if err != nil {
			return err
		}

		if status == "" {
			status = cfg.Analysis.DefaultStatus
		}

		var limit *int
		if limitStr != "" && limitStr != "unlimited" {
			n, err := strconv.Atoi(limitStr)
			if err != nil {
				return fmt.Errorf("limit must be a number or \"unlimited\"")
			}
			if n < 0 {
				n = 0
			}
			limit = &n
		}

		logging.Info("analyzing project",
			"project", project,
			"status", status,
			"engine", cfg.Analysis.Engine)

		report, err := service.RunAnalysis(cmd.Context(), analysis.AnalyzeRequest{
			ProjectKey: project,
			Status:     status,
			Limit:      limit,
		})
		if err != nil {
			return err
		}

		return printJSON(report)
	},
}

func init() {
	analyzeCmd.Flags().StringP("project", "p", "", "Jira project key (e.g. 'WD')")
	analyzeCmd.Flags().StringP("status", "s", "", "status filter (defaults to the configured status)")
	analyzeCmd.Flags().StringP("limit", "l", "unlimited", "maximum tickets to analyze, or 'unlimited'")
	analyzeCmd.Flags().String("engine", "", "scoring engine: 'rule' or 'llm' (defaults to ANALYSIS_ENGINE)")
}
