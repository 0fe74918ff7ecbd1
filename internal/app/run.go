package app

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"emr-fleet/internal/cluster"
	"emr-fleet/internal/state"
)

// Render prints the compiled request as JSON without calling AWS.
func (a *App) Render(paths []string) error {
	req, err := a.compile(paths)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	_, err = fmt.Fprintln(a.Out, string(data))
	return err
}

// CreateOptions configures Create.
type CreateOptions struct {
	Wait        bool
	WaitOptions cluster.WaitOptions
}

// Create compiles and submits the request, then exports the new cluster id as
// last_cluster.id.
func (a *App) Create(ctx context.Context, paths []string, opts CreateOptions) error {
	req, err := a.compile(paths)
	if err != nil {
		return err
	}

	id, err := a.Cluster.Submit(ctx, req)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(a.Out, id); err != nil {
		return err
	}

	if err := state.Save(a.Settings.StateFile, &state.State{LastCluster: state.Cluster{ID: id}}); err != nil {
		return fmt.Errorf("cluster %s was created but its id could not be exported: %w", id, err)
	}
	a.Logger.Info("exported cluster id",
		zap.String("cluster_id", id),
		zap.String("state_file", a.Settings.StateFile))

	if !opts.Wait {
		return nil
	}
	_, err = a.Cluster.Wait(ctx, id, opts.WaitOptions)
	return err
}
