package compiler

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	"emr-fleet/internal/config"
)

// MasterFleet compiles master_fleet. Master capacity is always exactly one
// instance, bought either as spot (use_spot_instance, the default) or as
// on-demand.
func MasterFleet(n *config.Node, spot *emrtypes.InstanceFleetProvisioningSpecifications) (emrtypes.InstanceFleetConfig, error) {
	name, err := config.Get(n, "name", defaultFleetName(emrtypes.InstanceFleetTypeMaster))
	if err != nil {
		return emrtypes.InstanceFleetConfig{}, err
	}
	useSpot, err := config.Get(n, "use_spot_instance", true)
	if err != nil {
		return emrtypes.InstanceFleetConfig{}, err
	}
	candidates, err := fleetCandidates(n)
	if err != nil {
		return emrtypes.InstanceFleetConfig{}, err
	}

	targetSpot, targetOnDemand := int32(1), int32(0)
	if !useSpot {
		targetSpot, targetOnDemand = 0, 1
	}

	return emrtypes.InstanceFleetConfig{
		InstanceFleetType:      emrtypes.InstanceFleetTypeMaster,
		Name:                   aws.String(name),
		LaunchSpecifications:   spot,
		TargetSpotCapacity:     aws.Int32(targetSpot),
		TargetOnDemandCapacity: aws.Int32(targetOnDemand),
		InstanceTypeConfigs:    candidates,
	}, nil
}

// WorkerFleet compiles a core or task fleet. All of target_capacity is
// requested as spot capacity.
func WorkerFleet(n *config.Node, role emrtypes.InstanceFleetType, spot *emrtypes.InstanceFleetProvisioningSpecifications) (emrtypes.InstanceFleetConfig, error) {
	if role == emrtypes.InstanceFleetTypeMaster {
		return emrtypes.InstanceFleetConfig{}, fmt.Errorf("%s: master fleet must be compiled with MasterFleet", n.Path())
	}

	name, err := config.Get(n, "name", defaultFleetName(role))
	if err != nil {
		return emrtypes.InstanceFleetConfig{}, err
	}
	targetCapacity, err := config.Require[int32](n, "target_capacity")
	if err != nil {
		return emrtypes.InstanceFleetConfig{}, err
	}
	candidates, err := fleetCandidates(n)
	if err != nil {
		return emrtypes.InstanceFleetConfig{}, err
	}

	return emrtypes.InstanceFleetConfig{
		InstanceFleetType:      role,
		Name:                   aws.String(name),
		LaunchSpecifications:   spot,
		TargetSpotCapacity:     aws.Int32(targetCapacity),
		TargetOnDemandCapacity: aws.Int32(0),
		InstanceTypeConfigs:    candidates,
	}, nil
}

func fleetCandidates(n *config.Node) ([]emrtypes.InstanceTypeConfig, error) {
	nodes, err := n.NestedList("candidates")
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, &config.MissingConfigurationError{Key: n.Key("candidates")}
	}

	candidates := make([]emrtypes.InstanceTypeConfig, 0, len(nodes))
	for _, c := range nodes {
		candidate, err := Candidate(c)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func defaultFleetName(role emrtypes.InstanceFleetType) string {
	return strings.ToLower(string(role)) + " instance fleet"
}
