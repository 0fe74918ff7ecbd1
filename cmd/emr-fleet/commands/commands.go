package commands

import (
	"github.com/spf13/cobra"

	"emr-fleet/internal/app"
	"emr-fleet/internal/cluster"
)

// Render returns the command that prints the compiled request.
func Render() *cobra.Command {
	var configPaths []string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the compiled cluster request as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return a.Render(configPaths)
		},
	}

	addConfigFlag(cmd, &configPaths)
	return cmd
}

// Create returns the command that submits a new cluster.
func Create() *cobra.Command {
	var configPaths []string
	var opts app.CreateOptions
	var wf waitFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cluster and export its id as last_cluster.id",
		Long: `Compile the cluster document and submit it to EMR.

The new cluster id is printed and written to the state file as
last_cluster.id so that wait and shutdown can find it. A failed submission
is not retried.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			waitOpts, err := wf.options()
			if err != nil {
				return err
			}
			opts.WaitOptions = waitOpts

			a, err := app.New(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return a.Create(cmd.Context(), configPaths, opts)
		},
	}

	addConfigFlag(cmd, &configPaths)
	cmd.Flags().BoolVar(&opts.Wait, "wait", false, "Wait for the cluster to be ready")
	wf.register(cmd)
	return cmd
}

// Wait returns the command that blocks until a cluster is ready.
func Wait() *cobra.Command {
	var wf waitFlags

	cmd := &cobra.Command{
		Use:   "wait [cluster-id]",
		Short: "Wait until the cluster reaches a success state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := wf.options()
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return a.Wait(cmd.Context(), clusterIDArg(args), opts)
		},
	}

	wf.register(cmd)
	return cmd
}

// Shutdown returns the command that terminates a cluster.
func Shutdown() *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown [cluster-id]",
		Short: "Terminate the cluster",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return a.Shutdown(cmd.Context(), clusterIDArg(args))
		},
	}
}

// Cost returns the command that estimates the hourly cost of a request.
func Cost() *cobra.Command {
	var configPaths []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Estimate the hourly cost of the cluster",
		Long: `Estimate cluster cost from live EC2 spot prices and on-demand list prices.

Each fleet is priced as if it were filled with the candidate that is
cheapest per weighted unit.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return a.Cost(cmd.Context(), configPaths, jsonOutput)
		},
	}

	addConfigFlag(cmd, &configPaths)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func addConfigFlag(cmd *cobra.Command, paths *[]string) {
	cmd.Flags().StringSliceVarP(paths, "config", "c", nil, "Cluster document (repeatable, later files override earlier ones)")
	_ = cmd.MarkFlagRequired("config")
}

func clusterIDArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

type waitFlags struct {
	opts          cluster.WaitOptions
	successStates []string
	errorStates   []string
}

func (w *waitFlags) register(cmd *cobra.Command) {
	w.opts = cluster.DefaultWaitOptions()
	cmd.Flags().DurationVar(&w.opts.PollInterval, "polling-interval", w.opts.PollInterval, "Interval between status checks")
	cmd.Flags().DurationVar(&w.opts.Timeout, "timeout", w.opts.Timeout, "Maximum time to wait")
	cmd.Flags().StringSliceVar(&w.successStates, "success-state", nil, "States that end the wait successfully (default WAITING,RUNNING)")
	cmd.Flags().StringSliceVar(&w.errorStates, "error-state", nil, "States that fail the wait (default TERMINATING,TERMINATED,TERMINATED_WITH_ERRORS)")
}

func (w *waitFlags) options() (cluster.WaitOptions, error) {
	opts := w.opts
	if len(w.successStates) > 0 {
		states, err := app.ParseClusterStates("success-state", w.successStates)
		if err != nil {
			return opts, err
		}
		opts.SuccessStates = states
	}
	if len(w.errorStates) > 0 {
		states, err := app.ParseClusterStates("error-state", w.errorStates)
		if err != nil {
			return opts, err
		}
		opts.ErrorStates = states
	}
	return opts, nil
}
