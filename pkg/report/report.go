// Package report renders aggregated experiment results for human and
// spreadsheet consumption. It consumes only the experiment summary,
// never the engine directly.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"housesim/pkg/experiment"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	ruleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// Write renders a formatted experiment summary.
func Write(w io.Writer, summary *experiment.Summary) {
	rule := ruleStyle.Render("============================================================")

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, titleStyle.Render("EXPERIMENT SUMMARY"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Number of experiments: %d\n", summary.NumExperiments)
	fmt.Fprintf(w, "Average efficiency: %.3f ± %.3f\n",
		experiment.Mean(summary.EfficiencyScores), experiment.Std(summary.EfficiencyScores))
	fmt.Fprintf(w, "Average match rate: %.3f ± %.3f\n",
		experiment.Mean(summary.MatchRates), experiment.Std(summary.MatchRates))
	fmt.Fprintf(w, "Average rounds: %.1f ± %.1f\n",
		experiment.MeanInts(summary.RoundsTaken), experiment.StdInts(summary.RoundsTaken))

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("POLICY PERFORMANCE:"))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Policy\tMatch Rate\tAvg Quality\tAvg Exposures\tMatches\tUnmatched")
	for _, name := range sortedPolicies(summary) {
		stats := summary.PolicyStats[name]
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.1f\t%d\t%d\n",
			name,
			matchRate(stats),
			experiment.Mean(stats.Qualities),
			experiment.MeanInts(stats.Exposures),
			stats.Matches,
			stats.Unmatches,
		)
	}
	tw.Flush()
	fmt.Fprintln(w, rule)
}

// WriteCSV exports the per-policy aggregate rows.
func WriteCSV(w io.Writer, summary *experiment.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"policy", "match_rate", "avg_quality", "avg_exposures", "matches", "unmatched", "total_agents"}); err != nil {
		return err
	}
	for _, name := range sortedPolicies(summary) {
		stats := summary.PolicyStats[name]
		row := []string{
			name,
			strconv.FormatFloat(matchRate(stats), 'f', 4, 64),
			strconv.FormatFloat(experiment.Mean(stats.Qualities), 'f', 4, 64),
			strconv.FormatFloat(experiment.MeanInts(stats.Exposures), 'f', 2, 64),
			strconv.Itoa(stats.Matches),
			strconv.Itoa(stats.Unmatches),
			strconv.Itoa(stats.TotalAgents),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedPolicies(summary *experiment.Summary) []string {
	names := make([]string, 0, len(summary.PolicyStats))
	for name := range summary.PolicyStats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func matchRate(stats *experiment.PolicyStats) float64 {
	if stats.TotalAgents == 0 {
		return 0
	}
	return float64(stats.Matches) / float64(stats.TotalAgents)
}
