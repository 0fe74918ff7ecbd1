package compiler

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	"emr-fleet/internal/config"
)

// BootstrapAction compiles a named script reference:
//
//	name: install-deps
//	script:
//	  path: s3://bucket/bootstrap.sh
//	  args: [--fast]
func BootstrapAction(n *config.Node) (emrtypes.BootstrapActionConfig, error) {
	name, err := config.Require[string](n, "name")
	if err != nil {
		return emrtypes.BootstrapActionConfig{}, err
	}
	script, err := n.Nested("script")
	if err != nil {
		return emrtypes.BootstrapActionConfig{}, err
	}
	path, err := config.Require[string](script, "path")
	if err != nil {
		return emrtypes.BootstrapActionConfig{}, err
	}
	args, err := config.ListOrEmpty[string](script, "args")
	if err != nil {
		return emrtypes.BootstrapActionConfig{}, err
	}

	return emrtypes.BootstrapActionConfig{
		Name: aws.String(name),
		ScriptBootstrapAction: &emrtypes.ScriptBootstrapActionConfig{
			Path: aws.String(path),
			Args: args,
		},
	}, nil
}

func bootstrapActions(n *config.Node) ([]emrtypes.BootstrapActionConfig, error) {
	nodes, err := n.NestedListOrEmpty("bootstrap_actions")
	if err != nil {
		return nil, err
	}

	var out []emrtypes.BootstrapActionConfig
	for _, child := range nodes {
		action, err := BootstrapAction(child)
		if err != nil {
			return nil, err
		}
		out = append(out, action)
	}
	return out, nil
}
