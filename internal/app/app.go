// Package app executes the emr-fleet commands: it wires settings, logging,
// the cluster document, and the AWS clients together.
package app

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"
	"go.uber.org/zap"

	"emr-fleet/internal/cluster"
	"emr-fleet/internal/compiler"
	"emr-fleet/internal/config"
	"emr-fleet/internal/logging"
	"emr-fleet/internal/pricing"
	"emr-fleet/internal/settings"
	"emr-fleet/pkg/models"
)

// ClusterClient is the control-plane side of the commands.
type ClusterClient interface {
	Submit(ctx context.Context, input *emr.RunJobFlowInput) (string, error)
	Wait(ctx context.Context, clusterID string, opts cluster.WaitOptions) (emrtypes.ClusterState, error)
	Terminate(ctx context.Context, clusterID string) error
}

// Estimator prices a compiled request.
type Estimator interface {
	Estimate(ctx context.Context, req *emr.RunJobFlowInput, region string) (*models.Estimate, error)
}

// App holds the dependencies shared by all commands.
type App struct {
	Settings *settings.Settings
	Logger   *zap.Logger
	Out      io.Writer
	Region   string
	Cluster  ClusterClient
	Prices   Estimator
}

// New builds an App from the environment and the default AWS config chain.
func New(ctx context.Context, out io.Writer) (*App, error) {
	s, err := settings.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(s.DevelopmentLogging)
	if err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &App{
		Settings: s,
		Logger:   logger,
		Out:      out,
		Region:   awsCfg.Region,
		Cluster:  cluster.NewClient(awsCfg, logger),
		Prices:   pricing.NewPriceClient(awsCfg),
	}, nil
}

// compile loads the cluster documents and compiles them into one request.
func (a *App) compile(paths []string) (*emr.RunJobFlowInput, error) {
	root, err := config.LoadFiles(paths...)
	if err != nil {
		return nil, err
	}

	req, err := compiler.Compile(root, a.Settings.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid cluster configuration: %w", err)
	}
	return req, nil
}
