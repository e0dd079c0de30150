package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"pfm/internal/milestones"
	"pfm/internal/services"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type opener func() (*app, error)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireUser(id int64) error {
	if id <= 0 {
		return errors.New("--user is required")
	}
	return nil
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", a.cfg.SQLiteDBPath)
			return nil
		},
	}
}

func newMilestonesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "milestones",
		Short: "List the Baby Steps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if flags.jsonOut {
				return printJSON(out, milestones.All())
			}
			var rows [][]string
			for _, m := range milestones.All() {
				rows = append(rows, []string{strconv.Itoa(m.Step), m.Title, m.Description})
			}
			_, err := fmt.Fprintln(out, renderTable(out, []string{"STEP", "TITLE", "DESCRIPTION"}, rows, nil))
			return err
		},
	}
}

func newEvaluateCmd(open opener, flags *rootFlags) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a user's Baby Steps without persisting anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.milestones.Evaluate(cmd.Context(), userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonOut {
				return printJSON(out, report)
			}
			switch {
			case report.NotFound:
				return fmt.Errorf("user %d not found", userID)
			case report.NoData:
				fmt.Fprintf(out, "User %d has not submitted the questionnaire yet\n", userID)
				return nil
			}

			fmt.Fprintf(out, "%s: %d of %d steps complete (%.1f%%)\n",
				report.Username, report.CompletedSteps, milestones.TotalSteps, report.ProgressPercentage)
			rows := make([][]string, 0, len(report.Milestones))
			for _, r := range report.Milestones {
				mark := ""
				if r.Completed {
					mark = "✓"
				}
				rows = append(rows, []string{mark, strconv.Itoa(r.Step), r.Title, r.Message})
			}
			_, err = fmt.Fprintln(out, renderTable(out, []string{"", "STEP", "TITLE", "STATUS"}, rows, func(row int) bool {
				return row >= 0 && row < len(report.Milestones) && report.Milestones[row].Completed
			}))
			return err
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	return cmd
}

func newRecalcCmd(open opener) *cobra.Command {
	var (
		userID int64
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Re-evaluate and persist milestone statuses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all {
				if err := requireUser(userID); err != nil {
					return errors.New("--user or --all is required")
				}
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if all {
				sweeper := services.NewMilestoneSweeper(a.repo, a.milestones, services.DefaultSweeperConfig())
				start := time.Now()
				changed, err := sweeper.SweepOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Swept all users in %s: %s step changes\n",
					time.Since(start).Round(time.Millisecond), humanize.Comma(int64(changed)))
				return nil
			}

			if err := a.milestones.RecalculateAndNotify(ctx, userID); err != nil {
				return err
			}
			statuses, err := a.milestones.Statuses(ctx, userID)
			if err != nil {
				return err
			}
			done := 0
			for _, s := range statuses {
				if s.IsCompleted {
					done++
				}
			}
			fmt.Fprintf(out, "User %d: %d of %d steps complete\n", userID, done, milestones.TotalSteps)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	cmd.Flags().BoolVar(&all, "all", false, "Resync every user")
	return cmd
}

func newBudgetCmd(open opener, flags *rootFlags) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Run the month-to-date budget check for a user, alerting on new thresholds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.budget.CheckBudgetAndAlert(cmd.Context(), userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flags.jsonOut {
				return printJSON(out, summary)
			}
			if summary == nil {
				fmt.Fprintf(out, "User %d: no budget threshold crossed\n", userID)
				return nil
			}
			state := "already alerted"
			if summary.NewlyCrossed {
				state = "new alert"
			}
			fmt.Fprintf(out, "User %d, %s: spent $%s of $%s (%d%%), level %d, %s\n",
				userID, summary.Period,
				humanize.CommafWithDigits(summary.TotalSpent.Float64(), 2),
				humanize.CommafWithDigits(summary.Budget.Float64(), 2),
				summary.Percentage, summary.AlertLevel, state)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	return cmd
}

func newExportCmd(open opener) *cobra.Command {
	var (
		userID      int64
		year, month int
		outPath     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one month of a user's expenses to an XLSX file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			if outPath == "" {
				outPath = fmt.Sprintf("expenses-%d-%04d-%02d.xlsx", userID, year, month)
			}

			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := a.expenses.ExportMonth(cmd.Context(), f, userID, year, month); err != nil {
				f.Close()
				_ = os.Remove(outPath)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User id")
	cmd.Flags().IntVar(&year, "year", 0, "Year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (default current)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file")
	return cmd
}
