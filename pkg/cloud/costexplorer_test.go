package cloud_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellybrine/terraforms/pkg/cloud"
)

type fakeCostExplorer struct {
	usageInput    *costexplorer.GetCostAndUsageInput
	usageOutput   *costexplorer.GetCostAndUsageOutput
	usageErr      error
	forecastInput *costexplorer.GetCostForecastInput
	forecastOut   *costexplorer.GetCostForecastOutput
	forecastErr   error
}

func (f *fakeCostExplorer) GetCostAndUsage(_ context.Context, params *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	f.usageInput = params
	return f.usageOutput, f.usageErr
}

func (f *fakeCostExplorer) GetCostForecast(_ context.Context, params *costexplorer.GetCostForecastInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostForecastOutput, error) {
	f.forecastInput = params
	return f.forecastOut, f.forecastErr
}

func usageGroup(service, amount string) cetypes.Group {
	return cetypes.Group{
		Keys: []string{service},
		Metrics: map[string]cetypes.MetricValue{
			"UnblendedCost": {Amount: aws.String(amount), Unit: aws.String("USD")},
		},
	}
}

func TestCostExplorerSource_CurrentPeriodCost(t *testing.T) {
	fake := &fakeCostExplorer{
		usageOutput: &costexplorer.GetCostAndUsageOutput{
			ResultsByTime: []cetypes.ResultByTime{
				{Groups: []cetypes.Group{
					usageGroup("Amazon EC2", "20.504"),
					usageGroup("Amazon S3", "4.10"),
				}},
			},
		},
	}
	source := cloud.NewCostExplorerSource(fake)

	snapshot, err := source.CurrentPeriodCost(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 24.60, snapshot.Total, 0.001)
	assert.Equal(t, "USD", snapshot.Currency)
	assert.InDelta(t, 20.504, snapshot.Breakdown["Amazon EC2"], 0.001)
	assert.InDelta(t, 4.10, snapshot.Breakdown["Amazon S3"], 0.001)
	assert.NotEmpty(t, snapshot.PeriodStart)
	assert.NotEmpty(t, snapshot.PeriodEnd)

	require.NotNil(t, fake.usageInput)
	assert.Equal(t, cetypes.GranularityMonthly, fake.usageInput.Granularity)
	require.Len(t, fake.usageInput.GroupBy, 1)
	assert.Equal(t, "SERVICE", *fake.usageInput.GroupBy[0].Key)
}

func TestCostExplorerSource_CurrentPeriodCost_NegativeTotal(t *testing.T) {
	// Credits and refunds come back as negative amounts; the total must
	// round away from zero, not truncate toward it.
	fake := &fakeCostExplorer{
		usageOutput: &costexplorer.GetCostAndUsageOutput{
			ResultsByTime: []cetypes.ResultByTime{
				{Groups: []cetypes.Group{usageGroup("Credits", "-10.256")}},
			},
		},
	}
	source := cloud.NewCostExplorerSource(fake)

	snapshot, err := source.CurrentPeriodCost(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, -10.26, snapshot.Total, 0.0001)
}

func TestCostExplorerSource_CurrentPeriodCost_Error(t *testing.T) {
	source := cloud.NewCostExplorerSource(&fakeCostExplorer{usageErr: errors.New("throttled")})

	_, err := source.CurrentPeriodCost(context.Background())
	assert.Error(t, err)
}

func TestCostExplorerSource_CurrentPeriodCost_BadAmount(t *testing.T) {
	fake := &fakeCostExplorer{
		usageOutput: &costexplorer.GetCostAndUsageOutput{
			ResultsByTime: []cetypes.ResultByTime{
				{Groups: []cetypes.Group{usageGroup("Amazon EC2", "not-a-number")}},
			},
		},
	}
	source := cloud.NewCostExplorerSource(fake)

	_, err := source.CurrentPeriodCost(context.Background())
	assert.Error(t, err)
}

func TestCostExplorerSource_Forecast(t *testing.T) {
	fake := &fakeCostExplorer{
		forecastOut: &costexplorer.GetCostForecastOutput{
			Total: &cetypes.MetricValue{Amount: aws.String("42.505")},
		},
	}
	source := cloud.NewCostExplorerSource(fake)

	forecast, err := source.Forecast(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 42.51, forecast, 0.001)
}

func TestCostExplorerSource_Forecast_Unavailable(t *testing.T) {
	source := cloud.NewCostExplorerSource(&fakeCostExplorer{forecastErr: errors.New("insufficient history")})

	_, err := source.Forecast(context.Background())
	assert.ErrorIs(t, err, cloud.ErrNoForecast)
}

func TestCostExplorerSource_Forecast_EmptyTotal(t *testing.T) {
	source := cloud.NewCostExplorerSource(&fakeCostExplorer{
		forecastOut: &costexplorer.GetCostForecastOutput{},
	})

	_, err := source.Forecast(context.Background())
	assert.ErrorIs(t, err, cloud.ErrNoForecast)
}
