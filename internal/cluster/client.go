package cluster

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"
)

// API is the subset of the EMR client used here.
type API interface {
	RunJobFlow(ctx context.Context, params *emr.RunJobFlowInput, optFns ...func(*emr.Options)) (*emr.RunJobFlowOutput, error)
	DescribeCluster(ctx context.Context, params *emr.DescribeClusterInput, optFns ...func(*emr.Options)) (*emr.DescribeClusterOutput, error)
	TerminateJobFlows(ctx context.Context, params *emr.TerminateJobFlowsInput, optFns ...func(*emr.Options)) (*emr.TerminateJobFlowsOutput, error)
}

// Client wraps the EMR API.
type Client struct {
	api    API
	logger *zap.Logger
}

// NewClient creates a client from an AWS config.
func NewClient(cfg aws.Config, logger *zap.Logger) *Client {
	return NewClientWithAPI(emr.NewFromConfig(cfg), logger)
}

// NewClientWithAPI creates a client over an existing API implementation.
func NewClientWithAPI(api API, logger *zap.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// Submit creates the cluster described by input and returns its id. It is
// called once; a failed call is not retried since every successful call
// creates a new cluster.
func (c *Client) Submit(ctx context.Context, input *emr.RunJobFlowInput) (string, error) {
	c.logger.Info("submitting cluster request",
		zap.String("name", aws.ToString(input.Name)),
		zap.String("release_label", aws.ToString(input.ReleaseLabel)))

	out, err := c.api.RunJobFlow(ctx, input)
	if err != nil {
		c.logger.Error("cluster request rejected", zap.Error(err))
		return "", &SubmissionError{Op: "RunJobFlow", Err: err}
	}

	id := aws.ToString(out.JobFlowId)
	c.logger.Info("cluster requested", zap.String("cluster_id", id))
	return id, nil
}

// Terminate shuts the cluster down.
func (c *Client) Terminate(ctx context.Context, clusterID string) error {
	_, err := c.api.TerminateJobFlows(ctx, &emr.TerminateJobFlowsInput{
		JobFlowIds: []string{clusterID},
	})
	if err != nil {
		return &SubmissionError{Op: "TerminateJobFlows", Err: err}
	}

	c.logger.Info("cluster termination requested", zap.String("cluster_id", clusterID))
	return nil
}

// WaitOptions configures Wait.
type WaitOptions struct {
	PollInterval  time.Duration
	Timeout       time.Duration
	SuccessStates []emrtypes.ClusterState
	ErrorStates   []emrtypes.ClusterState
}

// DefaultWaitOptions returns the options used when none are given.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		PollInterval: 30 * time.Second,
		Timeout:      45 * time.Minute,
		SuccessStates: []emrtypes.ClusterState{
			emrtypes.ClusterStateWaiting,
			emrtypes.ClusterStateRunning,
		},
		ErrorStates: []emrtypes.ClusterState{
			emrtypes.ClusterStateTerminating,
			emrtypes.ClusterStateTerminated,
			emrtypes.ClusterStateTerminatedWithErrors,
		},
	}
}

// Wait polls the cluster until it reaches a success state and returns that
// state. Reaching an error state yields a *StateError.
func (c *Client) Wait(ctx context.Context, clusterID string, opts WaitOptions) (emrtypes.ClusterState, error) {
	var last emrtypes.ClusterState

	err := wait.PollUntilContextTimeout(ctx, opts.PollInterval, opts.Timeout, true, func(ctx context.Context) (bool, error) {
		out, err := c.api.DescribeCluster(ctx, &emr.DescribeClusterInput{ClusterId: aws.String(clusterID)})
		if err != nil {
			return false, &SubmissionError{Op: "DescribeCluster", Err: err}
		}

		state, reason := clusterStatus(out)
		if state != last {
			c.logger.Info("cluster state changed",
				zap.String("cluster_id", clusterID),
				zap.String("state", string(state)))
			last = state
		}

		switch {
		case slices.Contains(opts.SuccessStates, state):
			return true, nil
		case slices.Contains(opts.ErrorStates, state):
			return false, &StateError{ClusterID: clusterID, State: state, Reason: reason}
		default:
			return false, nil
		}
	})
	if err != nil {
		if !wait.Interrupted(err) {
			return last, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return last, fmt.Errorf("stopped waiting for cluster %s in state %s: %w", clusterID, last, ctxErr)
		}
		return last, fmt.Errorf("cluster %s still in state %s after %s: %w", clusterID, last, opts.Timeout, err)
	}
	return last, nil
}

func clusterStatus(out *emr.DescribeClusterOutput) (emrtypes.ClusterState, string) {
	if out == nil || out.Cluster == nil || out.Cluster.Status == nil {
		return "", ""
	}
	status := out.Cluster.Status
	var reason string
	if status.StateChangeReason != nil {
		reason = aws.ToString(status.StateChangeReason.Message)
	}
	return status.State, reason
}
