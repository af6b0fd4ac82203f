package cloud

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

// CostExplorerAPI is the subset of the Cost Explorer client we use.
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
	GetCostForecast(ctx context.Context, params *costexplorer.GetCostForecastInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostForecastOutput, error)
}

// CostExplorerSource reads current-month spend from AWS Cost Explorer.
type CostExplorerSource struct {
	client CostExplorerAPI
	now    func() time.Time
}

// NewCostExplorerSource wraps a Cost Explorer client.
func NewCostExplorerSource(client CostExplorerAPI) *CostExplorerSource {
	return &CostExplorerSource{client: client, now: time.Now}
}

func (s *CostExplorerSource) CurrentPeriodCost(ctx context.Context) (*CostSnapshot, error) {
	today := s.now().UTC()
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
	end := today.AddDate(0, 0, 1).Format("2006-01-02")

	out, err := s.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start),
			End:   aws.String(end),
		},
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost", "UsageQuantity"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cost and usage: %w", err)
	}

	snapshot := &CostSnapshot{
		Currency:    "USD",
		PeriodStart: start,
		PeriodEnd:   end,
		Breakdown:   make(map[string]float64),
	}

	for _, result := range out.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric, ok := group.Metrics["UnblendedCost"]
			if !ok || metric.Amount == nil {
				continue
			}
			amount, err := strconv.ParseFloat(*metric.Amount, 64)
			if err != nil {
				return nil, fmt.Errorf("parse cost amount %q: %w", *metric.Amount, err)
			}
			snapshot.Breakdown[group.Keys[0]] += amount
			snapshot.Total += amount
		}
	}

	snapshot.Total = roundCents(snapshot.Total)
	return snapshot, nil
}

func (s *CostExplorerSource) Forecast(ctx context.Context) (float64, error) {
	today := s.now().UTC()
	start := today.AddDate(0, 0, 1).Format("2006-01-02")
	end := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, 0).Format("2006-01-02")

	out, err := s.client.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start),
			End:   aws.String(end),
		},
		Metric:      cetypes.MetricUnblendedCost,
		Granularity: cetypes.GranularityMonthly,
	})
	if err != nil {
		// Forecasts need usage history; a failure here is expected on young
		// accounts and near month boundaries.
		return 0, ErrNoForecast
	}
	if out.Total == nil || out.Total.Amount == nil {
		return 0, ErrNoForecast
	}

	forecast, err := strconv.ParseFloat(*out.Total.Amount, 64)
	if err != nil {
		return 0, ErrNoForecast
	}
	return roundCents(forecast), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
