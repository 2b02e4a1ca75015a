package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/history"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "risk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func seed(t *testing.T, backend history.Backend, profile string, metrics ...risk.Metrics) {
	t.Helper()
	store := history.NewRegistry(backend).ForProfile(profile)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, m := range metrics {
		a, err := risk.NewAssessment(fmt.Sprintf("1000000%d", i), m, []string{"tardiness"}, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, store.Append(context.Background(), a))
	}
}

var (
	lowRisk  = risk.NewMetrics(0.9, 0.95, 0, 0.85)
	highRisk = risk.NewMetrics(0.3, 0.4, 9, 0.2)
)

func TestClassifyCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr string
	}{
		{
			name: "complete metric set",
			args: []string{"classify", "--academic", "0.85", "--attendance", "0.65", "--incidents", "12", "--social", "0.4"},
			want: []string{"academic_performance", "green", "yellow", "Risk score: 0.725", "High", "behavioral_incidents:clamped"},
		},
		{
			name:    "absent metric fails",
			args:    []string{"classify", "--academic", "0.85"},
			wantErr: "attendance_rate",
		},
		{
			name: "absent metric is blue with partial",
			args: []string{"classify", "--academic", "0.85", "--partial"},
			want: []string{"blue", "Risk score: 0.075", "Low"},
		},
		{
			name:    "unknown output format",
			args:    []string{"classify", "-o", "yaml"},
			wantErr: "unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestClassifyJSON(t *testing.T) {
	out, err := run(t, "classify", "-o", "json", "--academic", "1", "--attendance", "1", "--incidents", "0", "--social", "1")
	require.NoError(t, err)

	var result risk.Classification
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, risk.LevelLow, result.RiskLevel)
	assert.InDelta(t, 0.3, result.RiskScore, 1e-9)
}

func TestCategorizeAndCatalogCommands(t *testing.T) {
	out, err := run(t, "categorize", "grades_declining", "tardiness", "peer_conflicts")
	require.NoError(t, err)
	assert.Contains(t, out, "Grades Declining")
	assert.Contains(t, out, "Tardiness")
	assert.Contains(t, out, "Peer Conflicts")

	out, err = run(t, "-o", "json", "categorize", "grades_declining", "tardiness")
	require.NoError(t, err)
	var cats risk.Categories
	require.NoError(t, json.Unmarshal([]byte(out), &cats))
	assert.Equal(t, risk.Categories{
		risk.CategoryAcademic:   {"Grades Declining"},
		risk.CategoryAttendance: {"Tardiness"},
	}, cats)

	_, err = run(t, "categorize")
	assert.Error(t, err)

	out, err = run(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "motivation_loss")
	assert.Contains(t, out, "Loss of Motivation")
}

func TestHistoryCommandsFileBackend(t *testing.T) {
	t.Chdir(t.TempDir())

	dataDir := t.TempDir()
	cfgFile := writeConfig(t, fmt.Sprintf("data_dir: %s\nhistory:\n  backend: file\n", dataDir))

	backend, err := history.NewFileBackend(filepath.Join(dataDir, "history"))
	require.NoError(t, err)
	seed(t, backend, "", lowRisk, highRisk)

	out, err := run(t, "--config", cfgFile, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "10000000")
	assert.Contains(t, out, "10000001")
	assert.Contains(t, out, "High")

	out, err = run(t, "--config", cfgFile, "history", "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "10000001")
	assert.NotContains(t, out, "10000000")

	out, err = run(t, "--config", cfgFile, "-o", "json", "distribution")
	require.NoError(t, err)
	var d risk.Distribution
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, risk.Distribution{Low: 1, High: 1, Total: 2}, d)

	out, err = run(t, "--config", cfgFile, "history", "list", "--profile", "someone-else")
	require.NoError(t, err)
	assert.Contains(t, out, "No assessments recorded under studentRiskData:someone-else")

	out, err = run(t, "--config", cfgFile, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared history studentRiskData")

	out, err = run(t, "--config", cfgFile, "history", "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "No assessments recorded")
}

func TestHistoryCommandsRedisBackend(t *testing.T) {
	t.Chdir(t.TempDir())

	mr := miniredis.RunT(t)
	cfgFile := writeConfig(t, fmt.Sprintf("history:\n  backend: redis\nredis:\n  addr: %s\n", mr.Addr()))

	backend, err := history.NewRedisBackend(context.Background(), history.RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer backend.Close()
	seed(t, backend, "profile-1", highRisk)

	out, err := run(t, "--config", cfgFile, "distribution", "--profile", "profile-1")
	require.NoError(t, err)
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "Total: 1")

	_, err = run(t, "--config", cfgFile, "history", "clear", "--profile", "profile-1")
	require.NoError(t, err)
	assert.False(t, mr.Exists(history.KeyFor("profile-1")))
}

func TestHistoryCommandBadConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "history", "list")
	assert.Error(t, err)

	cfgFile := writeConfig(t, "history:\n  backend: tape\n")
	_, err = run(t, "--config", cfgFile, "history", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tape")
}

func TestHistoryFlagsOverrideConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	dataDir := t.TempDir()
	backend, err := history.NewFileBackend(filepath.Join(dataDir, "history"))
	require.NoError(t, err)
	seed(t, backend, "", highRisk)

	cfgFile := writeConfig(t, "data_dir: /nonexistent/risk\nhistory:\n  backend: memory\n")

	out, err := run(t, "--config", cfgFile, "--history-backend", "file", "--data-dir", dataDir, "history", "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "10000000")

	out, err = run(t, "--config", cfgFile, "history", "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "No assessments recorded")
}
