package app

import (
	"context"
	"fmt"

	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"
	"go.uber.org/zap"

	"emr-fleet/internal/cluster"
	"emr-fleet/internal/config"
	"emr-fleet/internal/state"
)

// Wait blocks until the cluster reaches one of the success states.
func (a *App) Wait(ctx context.Context, clusterID string, opts cluster.WaitOptions) error {
	id, err := a.resolveClusterID(clusterID)
	if err != nil {
		return err
	}

	st, err := a.Cluster.Wait(ctx, id, opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.Out, "%s %s\n", id, st)
	return err
}

// Shutdown terminates the cluster.
func (a *App) Shutdown(ctx context.Context, clusterID string) error {
	id, err := a.resolveClusterID(clusterID)
	if err != nil {
		return err
	}

	a.Logger.Info("shutting down cluster", zap.String("cluster_id", id))
	return a.Cluster.Terminate(ctx, id)
}

// resolveClusterID falls back to the exported last_cluster.id.
func (a *App) resolveClusterID(clusterID string) (string, error) {
	if clusterID != "" {
		return clusterID, nil
	}

	s, err := state.Load(a.Settings.StateFile)
	if err != nil {
		return "", err
	}
	if s.LastCluster.ID == "" {
		return "", fmt.Errorf("no cluster id given and %s has no last_cluster.id", a.Settings.StateFile)
	}
	return s.LastCluster.ID, nil
}

// ParseClusterStates converts state names to cluster states, rejecting names
// the EMR API does not define. flag names the option for error messages.
func ParseClusterStates(flag string, names []string) ([]emrtypes.ClusterState, error) {
	known := emrtypes.ClusterState("").Values()
	allowed := make([]string, len(known))
	for i, k := range known {
		allowed[i] = string(k)
	}

	states := make([]emrtypes.ClusterState, 0, len(names))
	for _, name := range names {
		valid := false
		for _, k := range known {
			if string(k) == name {
				states = append(states, k)
				valid = true
				break
			}
		}
		if !valid {
			return nil, &config.InvalidEnumValueError{Key: flag, Value: name, Allowed: allowed}
		}
	}
	return states, nil
}
