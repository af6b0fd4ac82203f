package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hellybrine/terraforms/pkg/cloud"
	"github.com/hellybrine/terraforms/pkg/notify"
)

// topN is how many breakdown categories the notifications list.
const topN = 5

// minSignificantCost filters noise entries out of the breakdown listing.
const minSignificantCost = 0.01

// Composer renders tier-specific notification messages. Output is a pure
// function of its inputs so tests can assert on exact text.
type Composer struct {
	Thresholds Thresholds
}

// TopCategories formats the top-N breakdown entries by cost descending.
// Entries at or below one cent are omitted.
func TopCategories(breakdown map[string]float64) string {
	type entry struct {
		name string
		cost float64
	}
	entries := make([]entry, 0, len(breakdown))
	for name, cost := range breakdown {
		entries = append(entries, entry{name, cost})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cost != entries[j].cost {
			return entries[i].cost > entries[j].cost
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}

	var lines []string
	for _, e := range entries {
		if e.cost > minSignificantCost {
			lines = append(lines, fmt.Sprintf("  - %s: $%.2f", e.name, e.cost))
		}
	}
	if len(lines) == 0 {
		return "  (No significant costs yet)"
	}
	return strings.Join(lines, "\n")
}

// InventoryLines renders an inventory summary one category per line.
func InventoryLines(counts []cloud.CategoryCount) string {
	if len(counts) == 0 {
		return "  (Unable to list resources)"
	}
	var lines []string
	for _, c := range counts {
		lines = append(lines, fmt.Sprintf("  - %s: %d", c.Label, c.Count))
	}
	return strings.Join(lines, "\n")
}

func forecastLine(forecast *float64) string {
	if forecast == nil {
		return ""
	}
	return fmt.Sprintf("\nForecasted month-end cost: $%.2f", *forecast)
}

// Normal is the optional all-clear summary, sent only when configured.
func (c Composer) Normal(snapshot *cloud.CostSnapshot, forecast *float64) notify.Message {
	body := fmt.Sprintf(`Cost Summary

Current spending: $%.2f %s
Alert threshold: $%.2f %s%s

Top services:
%s

All costs within limits.`,
		snapshot.Total, snapshot.Currency,
		c.Thresholds.Alert, snapshot.Currency,
		forecastLine(forecast),
		TopCategories(snapshot.Breakdown),
	)
	return notify.Message{
		Title:    fmt.Sprintf("Cost Summary: $%.2f", snapshot.Total),
		Body:     body,
		Priority: notify.PriorityLow,
		Tags:     []string{"chart_with_upwards_trend", "white_check_mark"},
	}
}

// Alert is the high-priority over-threshold notification.
func (c Composer) Alert(snapshot *cloud.CostSnapshot, forecast *float64) notify.Message {
	body := fmt.Sprintf(`Cost Alert

Current spending: $%.2f %s
Alert threshold: $%.2f %s
Period: %s%s

Top services by cost:
%s

Review your resources to control costs.`,
		snapshot.Total, snapshot.Currency,
		c.Thresholds.Alert, snapshot.Currency,
		snapshot.Period(),
		forecastLine(forecast),
		TopCategories(snapshot.Breakdown),
	)
	return notify.Message{
		Title:    fmt.Sprintf("Cost Alert: $%.2f", snapshot.Total),
		Body:     body,
		Priority: notify.PriorityHigh,
		Tags:     []string{"warning", "dollar"},
	}
}

// CriticalWarning is the urgent pre-action warning. It always goes out on
// the critical tier, before and independent of the gate decision.
func (c Composer) CriticalWarning(snapshot *cloud.CostSnapshot, inventory []cloud.CategoryCount) notify.Message {
	body := fmt.Sprintf(`CRITICAL COST ALERT!

Current spending: $%.2f %s
Critical threshold: $%.2f %s
Period: %s

Top services by cost:
%s

Active resources that may be cleaned up:
%s

ACTION REQUIRED: Review and terminate unnecessary resources immediately!

To prevent automated cleanup, reduce costs below $%.2f or adjust the threshold.`,
		snapshot.Total, snapshot.Currency,
		c.Thresholds.Critical, snapshot.Currency,
		snapshot.Period(),
		TopCategories(snapshot.Breakdown),
		InventoryLines(inventory),
		c.Thresholds.Critical,
	)
	return notify.Message{
		Title:    "CRITICAL: Cost Emergency",
		Body:     body,
		Priority: notify.PriorityUrgent,
		Tags:     []string{"rotating_light", "dollar", "skull"},
	}
}

// SkipNotice reports that the gate blocked automatic cleanup so the missing
// action is visible to operators.
func (c Composer) SkipNotice() notify.Message {
	return notify.Message{
		Title: "Cleanup Skipped - Manual Action Required",
		Body: `Automatic cleanup is DISABLED.

To enable automatic resource cleanup, set nuke.enabled=true.

For now, please manually review and terminate resources.`,
		Priority: notify.PriorityHigh,
		Tags:     []string{"hand", "warning"},
	}
}

// DryRunListing reports what a real run would have acted on.
func (c Composer) DryRunListing(inventory []cloud.CategoryCount) notify.Message {
	return notify.Message{
		Title: "Cleanup DRY RUN",
		Body: fmt.Sprintf(`DRY RUN - Would act on:

%s

Set nuke.dry_run=false to actually clean up resources.`,
			InventoryLines(inventory)),
		Priority: notify.PriorityHigh,
		Tags:     []string{"test_tube", "warning"},
	}
}

// Completion summarizes an executed action sequence, successes and failures
// both, so failed categories surface for manual follow-up.
func (c Composer) Completion(report *ActionReport) notify.Message {
	succeeded := "  (none)"
	if len(report.Succeeded) > 0 {
		var lines []string
		for _, s := range report.Succeeded {
			lines = append(lines, "  - "+s)
		}
		succeeded = strings.Join(lines, "\n")
	}

	failed := "  (none)"
	if len(report.Failed) > 0 {
		var lines []string
		for _, f := range report.Failed {
			lines = append(lines, fmt.Sprintf("  - %s: %s", f.Category, f.Error))
		}
		failed = strings.Join(lines, "\n")
	}

	return notify.Message{
		Title: "Resource Cleanup Complete",
		Body: fmt.Sprintf(`CLEANUP EXECUTED

Actions taken:
%s

Errors:
%s

Please verify the changes in your cloud console.`, succeeded, failed),
		Priority: notify.PriorityUrgent,
		Tags:     []string{"skull", "check"},
	}
}
