package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

func newClassifyCmd(c *cli) *cobra.Command {
	var (
		academic, attendance, social float64
		incidents                    int
		partial                      bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Grade a metric set and compute its risk level",
		Long: `Normalize the given metrics to health scores, grade each one and
aggregate the grades into a risk score and level.

Metrics that are not given are absent. Without --partial an absent metric is
an error; with it the metric is graded blue and weighs nothing.

Examples:
  riskctl classify --academic 0.85 --attendance 0.65 --incidents 2 --social 0.7
  riskctl classify --academic 0.5 --partial -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m risk.Metrics
			flags := cmd.Flags()
			if flags.Changed("academic") {
				m.AcademicPerformance = &academic
			}
			if flags.Changed("attendance") {
				m.AttendanceRate = &attendance
			}
			if flags.Changed("incidents") {
				m.BehavioralIncidents = &incidents
			}
			if flags.Changed("social") {
				m.SocialEmotionalScore = &social
			}

			var opts []risk.Option
			if partial {
				opts = append(opts, risk.WithPartial())
			}
			result, err := risk.Classify(m, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if c.output == outputJSON {
				return writeJSON(out, result)
			}

			rows := make([][]string, 0, len(risk.MetricKinds))
			for _, kind := range risk.MetricKinds {
				value, health := "-", "-"
				if v, ok := m.Value(kind); ok {
					value = strconv.FormatFloat(v, 'f', -1, 64)
				}
				if h, ok := result.Health[kind]; ok {
					health = formatScore(h)
				}
				rows = append(rows, []string{string(kind), value, health, colorGrade(result.Grades[kind])})
			}
			if err := renderTable(out, []string{"Metric", "Value", "Health", "Grade"}, rows, false); err != nil {
				return err
			}

			fmt.Fprintf(out, "Risk score: %s  Level: %s\n", formatScore(result.RiskScore), colorLevel(result.RiskLevel))
			if len(result.Flags) > 0 {
				fmt.Fprintf(out, "Flags: %s\n", strings.Join(result.Flags, ", "))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&academic, "academic", 0, "academic performance in [0,1]")
	cmd.Flags().Float64Var(&attendance, "attendance", 0, "attendance rate in [0,1]")
	cmd.Flags().IntVar(&incidents, "incidents", 0, "behavioral incident count")
	cmd.Flags().Float64Var(&social, "social", 0, "social-emotional score in [0,1]")
	cmd.Flags().BoolVar(&partial, "partial", false, "grade absent metrics blue instead of failing")
	return cmd
}

func newCategorizeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "categorize <factor>...",
		Short:   "Group risk factor tags into academic, attendance and behavioral",
		Example: `  riskctl categorize grades_declining tardiness peer_conflicts`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := risk.CategorizeFactors(args)

			out := cmd.OutOrStdout()
			if c.output == outputJSON {
				return writeJSON(out, cats)
			}

			var rows [][]string
			for _, cat := range categoryOrder {
				if labels, ok := cats[cat]; ok {
					rows = append(rows, []string{string(cat), strings.Join(labels, ", ")})
				}
			}
			return renderTable(out, []string{"Category", "Factors"}, rows, false)
		},
	}
}

func newCatalogCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the known risk factor tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := risk.FactorCatalog()

			out := cmd.OutOrStdout()
			if c.output == outputJSON {
				return writeJSON(out, catalog)
			}

			rows := make([][]string, 0, len(catalog))
			for _, f := range catalog {
				rows = append(rows, []string{f.Tag, f.Label, string(f.Category)})
			}
			return renderTable(out, []string{"Tag", "Label", "Category"}, rows, false)
		},
	}
}
