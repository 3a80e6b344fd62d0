package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	renderhistory "github.com/bnema/community-accounts-cli/internal/adapters/render/history"
	"github.com/bnema/community-accounts-cli/internal/domain"
)

func newHistoryCmd(app *app) *cobra.Command {
	var (
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the operation history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger := app.newLedger()

			var days []domain.HistoryDay
			title := "Today's Operations"
			if all {
				loaded, err := ledger.LoadAll(cmd.Context())
				if err != nil {
					return err
				}
				days = loaded
				title = "Operation History"
			} else {
				records, err := ledger.LoadToday(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) > 0 {
					days = []domain.HistoryDay{{
						Date:    app.clock.Now().Format(domain.HistoryDateFormat),
						Records: records,
					}}
				}
			}

			if asJSON {
				return writeHistoryJSON(cmd, days)
			}

			output, err := renderhistory.Render(days, renderhistory.RenderOptions{Title: title})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Show every stored day, not just today")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output records as JSON")

	cmd.AddCommand(newHistoryClearCmd(app))

	return cmd
}

func newHistoryClearCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete today's history records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger := app.newLedger()

			if all {
				if err := ledger.ClearAll(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleared all history")
				return nil
			}

			if err := ledger.ClearToday(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cleared today's history")

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete every stored day")

	return cmd
}

type historyRecordJSON struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
	Operation string `json:"operation"`
	Email     string `json:"email"`
	TargetID  string `json:"target_id"`
	Result    string `json:"result"`
	Env       string `json:"env"`
	Details   string `json:"details"`
}

func writeHistoryJSON(cmd *cobra.Command, days []domain.HistoryDay) error {
	records := make([]historyRecordJSON, 0)
	for _, day := range days {
		for _, record := range day.Records {
			records = append(records, historyRecordJSON{
				ID:        record.ID,
				Timestamp: record.Timestamp.Format(time.RFC3339),
				Date:      day.Date,
				Operation: record.Operation,
				Email:     record.Email,
				TargetID:  record.TargetID,
				Result:    string(record.Result),
				Env:       string(record.Env),
				Details:   record.Details,
			})
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")

	return encoder.Encode(records)
}
