package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/history"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear recorded assessments",
		Long: `Read the assessment history recorded by the server.

Without --profile the local history is used. Browser sessions record under
their profile id, which the dashboard shows in its header.

Subcommands:
  list   - Show every assessment, oldest first
  latest - Show the newest assessment
  clear  - Delete the history`,
	}
	cmd.PersistentFlags().StringVar(&profile, "profile", "", "profile id whose history to use")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show every recorded assessment",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withStore(cmd, profile, func(store *history.Store) error {
					all, err := store.All(cmd.Context())
					if err != nil {
						return err
					}

					out := cmd.OutOrStdout()
					if c.output == outputJSON {
						return writeJSON(out, all)
					}
					if len(all) == 0 {
						fmt.Fprintf(out, "No assessments recorded under %s\n", store.Key())
						return nil
					}
					return renderAssessments(out, all)
				})
			},
		},
		&cobra.Command{
			Use:   "latest",
			Short: "Show the newest assessment",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withStore(cmd, profile, func(store *history.Store) error {
					latest, ok, err := store.Latest(cmd.Context())
					if err != nil {
						return err
					}

					out := cmd.OutOrStdout()
					if !ok {
						fmt.Fprintf(out, "No assessments recorded under %s\n", store.Key())
						return nil
					}
					if c.output == outputJSON {
						return writeJSON(out, latest)
					}
					return renderAssessments(out, []risk.Assessment{latest})
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete the recorded history",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withStore(cmd, profile, func(store *history.Store) error {
					if err := store.Clear(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared history %s\n", store.Key())
					return nil
				})
			},
		},
	)
	return cmd
}

func newDistributionCmd(c *cli) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Count recorded assessments per risk level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd, profile, func(store *history.Store) error {
				all, err := store.All(cmd.Context())
				if err != nil {
					return err
				}
				d := risk.DistributionForHistory(all)

				out := cmd.OutOrStdout()
				if c.output == outputJSON {
					return writeJSON(out, d)
				}

				rows := [][]string{
					{colorLevel(risk.LevelLow), strconv.Itoa(d.Low), share(d.Low, d.Total)},
					{colorLevel(risk.LevelMedium), strconv.Itoa(d.Medium), share(d.Medium, d.Total)},
					{colorLevel(risk.LevelHigh), strconv.Itoa(d.High), share(d.High, d.Total)},
				}
				if err := renderTable(out, []string{"Level", "Count", "Share"}, rows, true); err != nil {
					return err
				}
				fmt.Fprintf(out, "Total: %d\n", d.Total)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "profile id whose history to use")
	return cmd
}

func (c *cli) withStore(cmd *cobra.Command, profile string, fn func(*history.Store) error) error {
	registry, closeFn, err := c.openHistory(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(registry.ForProfile(profile))
}

func renderAssessments(w io.Writer, all []risk.Assessment) error {
	rows := make([][]string, 0, len(all))
	for i, a := range all {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Timestamp.Local().Format(time.DateTime),
			a.StudentID,
			formatScore(a.RiskScore),
			colorLevel(a.RiskLevel),
			strings.Join(a.Factors, ", "),
		})
	}
	return renderTable(w, []string{"#", "Timestamp", "Student", "Score", "Level", "Factors"}, rows, false)
}

func share(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}
