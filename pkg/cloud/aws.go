package cloud

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Clients bundles the concrete AWS-backed collaborators.
type Clients struct {
	Costs     *CostExplorerSource
	Inventory *AWSInventory
	Actions   *AWSActions
	S3        *s3.Client
}

// NewClients loads the default AWS credential chain and wires up every
// collaborator the sentinel needs. Region may be empty to defer to the
// environment.
func NewClients(ctx context.Context, region string, logger *slog.Logger) (*Clients, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	ec2c := ec2.NewFromConfig(cfg)
	rdsc := rds.NewFromConfig(cfg)

	return &Clients{
		Costs:     NewCostExplorerSource(costexplorer.NewFromConfig(cfg)),
		Inventory: NewAWSInventory(ec2c, rdsc, lambda.NewFromConfig(cfg), s3.NewFromConfig(cfg), logger),
		Actions:   NewAWSActions(ec2c, rdsc, logger),
		S3:        s3.NewFromConfig(cfg),
	}, nil
}
