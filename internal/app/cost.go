package app

import (
	"context"
	"encoding/json"
	"fmt"
)

// Cost prints the estimated hourly cost of the compiled request.
func (a *App) Cost(ctx context.Context, paths []string, jsonOutput bool) error {
	req, err := a.compile(paths)
	if err != nil {
		return err
	}

	estimate, err := a.Prices.Estimate(ctx, req, a.Region)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(estimate, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal estimate: %w", err)
		}
		_, err = fmt.Fprintln(a.Out, string(data))
		return err
	}

	fmt.Fprintf(a.Out, "\n%-8s %-15s %-6s %-10s %-10s %-12s %-12s %-12s\n",
		"FLEET", "INSTANCE", "UNITS", "SPOT CAP", "OD CAP", "SPOT", "ON-DEMAND", "COST/HOUR")
	fmt.Fprintln(a.Out, "------------------------------------------------------------------------------------------")

	for _, f := range estimate.Fleets {
		fmt.Fprintf(a.Out, "%-8s %-15s %-6d %-10d %-10d $%-11.4f $%-11.4f $%-11.4f\n",
			f.Role, f.InstanceType, f.SpotUnits, f.TargetSpotCapacity, f.TargetOnDemandCapacity,
			f.SpotPrice, f.OnDemandPrice, f.HourlyCost)
	}

	_, err = fmt.Fprintf(a.Out, "\ntotal (%s): $%.4f/hour\n", estimate.Region, estimate.HourlyCost)
	return err
}
