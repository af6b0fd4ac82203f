package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/smithy-go"
)

// AWSActions executes the cleanup actions against EC2 and RDS.
// Compute and databases are stopped rather than terminated; gateways are
// deleted because they bill by the hour whether or not traffic flows.
type AWSActions struct {
	ec2    EC2API
	rds    RDSAPI
	logger *slog.Logger
}

// NewAWSActions builds an action executor over the given service clients.
func NewAWSActions(ec2c EC2API, rdsc RDSAPI, logger *slog.Logger) *AWSActions {
	return &AWSActions{ec2: ec2c, rds: rdsc, logger: logger}
}

func (a *AWSActions) PauseCompute(ctx context.Context) (*ActionResult, error) {
	out, err := a.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describe instances: %w", err)
	}

	var ids []string
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			if instance.InstanceId != nil {
				ids = append(ids, *instance.InstanceId)
			}
		}
	}
	if len(ids) == 0 {
		return &ActionResult{Description: "No running EC2 instances"}, nil
	}

	if _, err := a.ec2.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: ids}); err != nil {
		return nil, fmt.Errorf("stop instances: %w", err)
	}
	return &ActionResult{
		Description: fmt.Sprintf("Stopped %d EC2 instances", len(ids)),
		Affected:    len(ids),
	}, nil
}

func (a *AWSActions) DeleteGateways(ctx context.Context) (*ActionResult, error) {
	out, err := a.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		Filter: []ec2types.Filter{
			{Name: aws.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describe nat gateways: %w", err)
	}
	if len(out.NatGateways) == 0 {
		return &ActionResult{Description: "No NAT gateways"}, nil
	}

	deleted := 0
	var lastErr error
	for _, gw := range out.NatGateways {
		if gw.NatGatewayId == nil {
			continue
		}
		if _, err := a.ec2.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{
			NatGatewayId: gw.NatGatewayId,
		}); err != nil {
			a.logger.Error("delete nat gateway", "id", *gw.NatGatewayId, "error", err)
			lastErr = err
			continue
		}
		deleted++
	}
	if deleted == 0 && lastErr != nil {
		return nil, fmt.Errorf("delete nat gateways: %w", lastErr)
	}
	return &ActionResult{
		Description: fmt.Sprintf("Deleted %d NAT gateways", deleted),
		Affected:    deleted,
	}, nil
}

func (a *AWSActions) PauseDatabases(ctx context.Context) (*ActionResult, error) {
	out, err := a.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return nil, fmt.Errorf("describe db instances: %w", err)
	}

	stopped := 0
	var lastErr error
	for _, db := range out.DBInstances {
		if db.DBInstanceIdentifier == nil || db.DBInstanceStatus == nil {
			continue
		}
		if *db.DBInstanceStatus != "available" {
			continue
		}
		_, err := a.rds.StopDBInstance(ctx, &rds.StopDBInstanceInput{
			DBInstanceIdentifier: db.DBInstanceIdentifier,
		})
		if err != nil {
			if isStopUnsupported(err) {
				// Aurora serverless and some replica configurations refuse
				// the stop call. Expected, skip.
				a.logger.Info("db instance cannot be stopped, skipping",
					"id", *db.DBInstanceIdentifier)
				continue
			}
			a.logger.Error("stop db instance", "id", *db.DBInstanceIdentifier, "error", err)
			lastErr = err
			continue
		}
		stopped++
	}
	if stopped == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("stop db instances: %w", lastErr)
		}
		return &ActionResult{Description: "No stoppable RDS instances"}, nil
	}
	return &ActionResult{
		Description: fmt.Sprintf("Stopped %d RDS instances", stopped),
		Affected:    stopped,
	}, nil
}

func isStopUnsupported(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "InvalidDBInstanceState", "InvalidParameterCombination", "InvalidParameterValue":
		return true
	}
	return false
}
