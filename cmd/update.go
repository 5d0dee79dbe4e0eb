package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/triage/internal/analysis"
	"github.com/danielolaszy/triage/internal/logging"
	"github.com/danielolaszy/triage/pkg/models"
)

// updateCmd writes ai_ fields to one or many tickets.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Write ai_ fields to one or many tickets",
	Long: `Write ai_ prefixed fields to Jira tickets.

A single ticket is updated with -i and one or more --set key=value pairs.
A batch is submitted with --input pointing at a JSON file holding an array
of {"issue_id": ..., "fields": {...}} objects. Only the recognized ai_
fields are ever written; anything else is dropped before the request.

With --dry-run the updates are previewed and nothing is written.

Examples:
  triage update -i WD-101 --set ai_impact_score=7 --set ai_theme_category=安定性
  triage update --input updates.json --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		issueID, err := cmd.Flags().GetString("issue")
		if err != nil {
			return err
		}

		input, err := cmd.Flags().GetString("input")
		if err != nil {
			return err
		}

		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return err
		}

		sets, err := cmd.Flags().GetStringArray("set")
		if err != nil {
			return err
		}

		service, _, err := buildService("")
		if err != nil {
			return err
		}

		if input != "" {
			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %v", input, err)
			}

			var items []models.UpdateItem
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("failed to parse %s: %v", input, err)
			}

			logging.Info("starting batch update", "items", len(items), "dry_run", dryRun)

			report, err := service.RunUpdate(cmd.Context(), analysis.UpdateRequest{
				Items:  items,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			return printJSON(report)
		}

		if issueID == "" {
			return fmt.Errorf("issue flag is required")
		}
		if len(sets) == 0 {
			return fmt.Errorf("at least one field must be specified using --set")
		}

		fields := make(map[string]any, len(sets))
		for _, pair := range sets {
			key, value, found := strings.Cut(pair, "=")
			if !found || key == "" {
				return fmt.Errorf("invalid --set value %q, expected key=value", pair)
			}
			fields[key] = parseFieldValue(value)
		}

		report, err := service.UpdateSingle(cmd.Context(), issueID, fields, dryRun)
		if err != nil {
			return err
		}

		return printJSON(report)
	},
}

// parseFieldValue keeps numeric and boolean values typed so Jira receives
// numbers as numbers.
func parseFieldValue(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func init() {
	updateCmd.Flags().StringP("issue", "i", "", "Jira issue key (e.g. 'WD-101')")
	updateCmd.Flags().StringArray("set", nil, "field to write as key=value (repeatable)")
	updateCmd.Flags().String("input", "", "JSON file with a batch of updates")
	updateCmd.Flags().Bool("dry-run", false, "preview the updates without writing")
}
