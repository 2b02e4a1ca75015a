package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

var (
	redColor    = color.New(color.FgRed, color.Bold)
	yellowColor = color.New(color.FgYellow, color.Bold)
	greenColor  = color.New(color.FgGreen)
	blueColor   = color.New(color.FgBlue)
)

var categoryOrder = []risk.Category{
	risk.CategoryAcademic,
	risk.CategoryAttendance,
	risk.CategoryBehavioral,
}

func colorGrade(g risk.Grade) string {
	switch g {
	case risk.GradeRed:
		return redColor.Sprint(g)
	case risk.GradeYellow:
		return yellowColor.Sprint(g)
	case risk.GradeGreen:
		return greenColor.Sprint(g)
	default:
		return blueColor.Sprint(g)
	}
}

func colorLevel(l risk.Level) string {
	switch l {
	case risk.LevelHigh:
		return redColor.Sprint(l)
	case risk.LevelMedium:
		return yellowColor.Sprint(l)
	default:
		return greenColor.Sprint(l)
	}
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable writes rows under headers. Numeric columns read best right
// aligned, so alignRight selects that for the whole body.
func renderTable(w io.Writer, headers []string, rows [][]string, alignRight bool) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	if alignRight {
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
