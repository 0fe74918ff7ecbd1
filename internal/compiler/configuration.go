package compiler

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	"emr-fleet/internal/config"
)

// maxConfigurationDepth bounds recursion through nested configurations.
const maxConfigurationDepth = 32

// SoftwareConfigurations compiles the list stored at key. An absent key
// yields nil.
func SoftwareConfigurations(n *config.Node, key string) ([]emrtypes.Configuration, error) {
	return softwareConfigurations(n, key, 0)
}

// SoftwareConfiguration compiles one classification subtree, recursing into
// its child configurations.
func SoftwareConfiguration(n *config.Node) (emrtypes.Configuration, error) {
	return softwareConfiguration(n, 0)
}

func softwareConfigurations(n *config.Node, key string, depth int) ([]emrtypes.Configuration, error) {
	nodes, err := n.NestedListOrEmpty(key)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	out := make([]emrtypes.Configuration, 0, len(nodes))
	for _, child := range nodes {
		c, err := softwareConfiguration(child, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func softwareConfiguration(n *config.Node, depth int) (emrtypes.Configuration, error) {
	if depth >= maxConfigurationDepth {
		return emrtypes.Configuration{}, fmt.Errorf("%s: configurations nested deeper than %d levels", n.Path(), maxConfigurationDepth)
	}

	classification, err := config.Require[string](n, "classification")
	if err != nil {
		return emrtypes.Configuration{}, err
	}
	properties, err := config.Get[map[string]string](n, "properties", nil)
	if err != nil {
		return emrtypes.Configuration{}, err
	}
	children, err := softwareConfigurations(n, "configurations", depth+1)
	if err != nil {
		return emrtypes.Configuration{}, err
	}

	return emrtypes.Configuration{
		Classification: aws.String(classification),
		Properties:     properties,
		Configurations: children,
	}, nil
}
