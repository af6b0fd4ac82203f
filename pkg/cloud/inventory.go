package cloud

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// EC2API is the subset of the EC2 client used for inventory and actions.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	DeleteNatGateway(ctx context.Context, params *ec2.DeleteNatGatewayInput, optFns ...func(*ec2.Options)) (*ec2.DeleteNatGatewayOutput, error)
}

// RDSAPI is the subset of the RDS client used for inventory and actions.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	StopDBInstance(ctx context.Context, params *rds.StopDBInstanceInput, optFns ...func(*rds.Options)) (*rds.StopDBInstanceOutput, error)
}

// LambdaAPI is the subset of the Lambda client used for inventory.
type LambdaAPI interface {
	ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
}

// S3API is the subset of the S3 client used for inventory.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// AWSInventory counts active billable resources across the account.
// Each category is queried independently; a failing category is logged and
// omitted so the rest of the listing still comes back.
type AWSInventory struct {
	ec2    EC2API
	rds    RDSAPI
	lambda LambdaAPI
	s3     S3API
	logger *slog.Logger
}

// NewAWSInventory builds an inventory source over the given service clients.
func NewAWSInventory(ec2c EC2API, rdsc RDSAPI, lambdac LambdaAPI, s3c S3API, logger *slog.Logger) *AWSInventory {
	return &AWSInventory{ec2: ec2c, rds: rdsc, lambda: lambdac, s3: s3c, logger: logger}
}

func (inv *AWSInventory) ListActive(ctx context.Context) []CategoryCount {
	var counts []CategoryCount

	appendCount := func(cat Category, label string, n int, err error) {
		if err != nil {
			inv.logger.Warn("inventory query failed", "category", cat, "error", err)
			return
		}
		if n > 0 {
			counts = append(counts, CategoryCount{Category: cat, Label: label, Count: n})
		}
	}

	n, err := inv.countInstances(ctx)
	appendCount(CategoryCompute, "EC2 Instances", n, err)

	n, err = inv.countDatabases(ctx)
	appendCount(CategoryDatabase, "RDS Instances", n, err)

	n, err = inv.countNatGateways(ctx)
	appendCount(CategoryGateway, "NAT Gateways", n, err)

	n, err = inv.countFunctions(ctx)
	appendCount(CategoryFunction, "Lambda Functions", n, err)

	n, err = inv.countBuckets(ctx)
	appendCount(CategoryStorage, "S3 Buckets", n, err)

	return counts
}

func (inv *AWSInventory) countInstances(ctx context.Context) (int, error) {
	out, err := inv.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("instance-state-name"), Values: []string{"running", "pending"}},
		},
	})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, reservation := range out.Reservations {
		total += len(reservation.Instances)
	}
	return total, nil
}

func (inv *AWSInventory) countDatabases(ctx context.Context) (int, error) {
	out, err := inv.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return 0, err
	}
	return len(out.DBInstances), nil
}

func (inv *AWSInventory) countNatGateways(ctx context.Context) (int, error) {
	out, err := inv.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		Filter: []ec2types.Filter{
			{Name: aws.String("state"), Values: []string{"available", "pending"}},
		},
	})
	if err != nil {
		return 0, err
	}
	return len(out.NatGateways), nil
}

func (inv *AWSInventory) countFunctions(ctx context.Context) (int, error) {
	out, err := inv.lambda.ListFunctions(ctx, &lambda.ListFunctionsInput{})
	if err != nil {
		return 0, err
	}
	return len(out.Functions), nil
}

func (inv *AWSInventory) countBuckets(ctx context.Context) (int, error) {
	out, err := inv.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return 0, err
	}
	return len(out.Buckets), nil
}
