package policy_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hellybrine/terraforms/pkg/cloud"
	"github.com/hellybrine/terraforms/pkg/notify"
	"github.com/hellybrine/terraforms/pkg/policy"
)

func testSnapshot(total float64, breakdown map[string]float64) *cloud.CostSnapshot {
	return &cloud.CostSnapshot{
		Total:       total,
		Currency:    "USD",
		PeriodStart: "2026-08-01",
		PeriodEnd:   "2026-08-30",
		Breakdown:   breakdown,
	}
}

func TestTopCategories(t *testing.T) {
	breakdown := map[string]float64{
		"A": 40, "B": 35, "C": 0.001, "D": 20, "E": 10, "F": 5,
	}

	out := policy.TopCategories(breakdown)

	lines := strings.Split(out, "\n")
	assert.Equal(t, []string{
		"  - A: $40.00",
		"  - B: $35.00",
		"  - D: $20.00",
		"  - E: $10.00",
		"  - F: $5.00",
	}, lines)
	assert.NotContains(t, out, "C:")
}

func TestTopCategories_Empty(t *testing.T) {
	assert.Equal(t, "  (No significant costs yet)", policy.TopCategories(nil))
	assert.Equal(t, "  (No significant costs yet)", policy.TopCategories(map[string]float64{
		"Tax": 0.004,
	}))
}

func TestInventoryLines(t *testing.T) {
	out := policy.InventoryLines([]cloud.CategoryCount{
		{Category: cloud.CategoryCompute, Label: "EC2 Instances", Count: 3},
		{Category: cloud.CategoryGateway, Label: "NAT Gateways", Count: 1},
	})
	assert.Equal(t, "  - EC2 Instances: 3\n  - NAT Gateways: 1", out)

	assert.Equal(t, "  (Unable to list resources)", policy.InventoryLines(nil))
}

func TestComposer_Alert(t *testing.T) {
	c := policy.Composer{Thresholds: policy.Thresholds{Alert: 10, Critical: 50}}
	forecast := 42.50

	msg := c.Alert(testSnapshot(25.00, map[string]float64{"EC2": 20, "S3": 5}), &forecast)

	assert.Equal(t, notify.PriorityHigh, msg.Priority)
	assert.Equal(t, []string{"warning", "dollar"}, msg.Tags)
	assert.Contains(t, msg.Title, "$25.00")
	assert.Contains(t, msg.Body, "Current spending: $25.00 USD")
	assert.Contains(t, msg.Body, "Alert threshold: $10.00 USD")
	assert.Contains(t, msg.Body, "2026-08-01 to 2026-08-30")
	assert.Contains(t, msg.Body, "Forecasted month-end cost: $42.50")
	assert.Contains(t, msg.Body, "  - EC2: $20.00")
}

func TestComposer_Alert_NoForecast(t *testing.T) {
	c := policy.Composer{Thresholds: policy.Thresholds{Alert: 10, Critical: 50}}

	msg := c.Alert(testSnapshot(25.00, nil), nil)

	assert.NotContains(t, msg.Body, "Forecasted")
}

func TestComposer_CriticalWarning(t *testing.T) {
	c := policy.Composer{Thresholds: policy.Thresholds{Alert: 10, Critical: 50}}
	inventory := []cloud.CategoryCount{
		{Category: cloud.CategoryCompute, Label: "EC2 Instances", Count: 2},
	}

	msg := c.CriticalWarning(testSnapshot(60.00, map[string]float64{"EC2": 55}), inventory)

	assert.Equal(t, notify.PriorityUrgent, msg.Priority)
	assert.Equal(t, []string{"rotating_light", "dollar", "skull"}, msg.Tags)
	assert.Contains(t, msg.Body, "Critical threshold: $50.00 USD")
	assert.Contains(t, msg.Body, "  - EC2 Instances: 2")
	assert.Contains(t, msg.Body, "reduce costs below $50.00")
	assert.Contains(t, msg.Body, "ACTION REQUIRED")
}

func TestComposer_Normal(t *testing.T) {
	c := policy.Composer{Thresholds: policy.Thresholds{Alert: 10, Critical: 50}}

	msg := c.Normal(testSnapshot(5.00, map[string]float64{"S3": 5}), nil)

	assert.Equal(t, notify.PriorityLow, msg.Priority)
	assert.Contains(t, msg.Body, "All costs within limits.")
}

func TestComposer_Deterministic(t *testing.T) {
	c := policy.Composer{Thresholds: policy.Thresholds{Alert: 10, Critical: 50}}
	snapshot := testSnapshot(25.00, map[string]float64{"EC2": 15, "RDS": 10})

	first := c.Alert(snapshot, nil)
	second := c.Alert(snapshot, nil)
	assert.Equal(t, first, second)
}

func TestComposer_Completion(t *testing.T) {
	c := policy.Composer{}
	report := &policy.ActionReport{
		Succeeded: []string{"Stopped 2 EC2 instances"},
		Failed: []policy.Failure{
			{Category: cloud.CategoryGateway, Error: "access denied"},
		},
	}

	msg := c.Completion(report)

	assert.Equal(t, notify.PriorityUrgent, msg.Priority)
	assert.Contains(t, msg.Body, "  - Stopped 2 EC2 instances")
	assert.Contains(t, msg.Body, "  - gateway: access denied")
}

func TestComposer_Completion_Empty(t *testing.T) {
	c := policy.Composer{}

	msg := c.Completion(&policy.ActionReport{})

	assert.Contains(t, msg.Body, "Actions taken:\n  (none)")
	assert.Contains(t, msg.Body, "Errors:\n  (none)")
}

func TestComposer_SkipAndDryRun(t *testing.T) {
	c := policy.Composer{}

	skip := c.SkipNotice()
	assert.Equal(t, notify.PriorityHigh, skip.Priority)
	assert.Contains(t, skip.Body, "DISABLED")

	dry := c.DryRunListing([]cloud.CategoryCount{
		{Category: cloud.CategoryDatabase, Label: "RDS Instances", Count: 1},
	})
	assert.Equal(t, []string{"test_tube", "warning"}, dry.Tags)
	assert.Contains(t, dry.Body, "DRY RUN")
	assert.Contains(t, dry.Body, "  - RDS Instances: 1")
}
