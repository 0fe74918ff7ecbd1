package compiler

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	"emr-fleet/internal/config"
)

const (
	defaultTimeoutAction          = emrtypes.SpotProvisioningTimeoutActionTerminateCluster
	defaultTimeoutDurationMinutes = 45
)

// SpotPolicy compiles the spot_spec subtree into the launch specification
// attached to every fleet of a request. It is built once per request and the
// same pointer is shared by all fleets.
func SpotPolicy(n *config.Node) (*emrtypes.InstanceFleetProvisioningSpecifications, error) {
	blockDuration, err := config.Optional[int32](n, "block_duration_minutes")
	if err != nil {
		return nil, err
	}
	timeoutAction, err := config.Enum(n, "timeout_action", defaultTimeoutAction,
		emrtypes.SpotProvisioningTimeoutAction("").Values())
	if err != nil {
		return nil, err
	}
	timeoutDuration, err := config.Get[int32](n, "timeout_duration_minutes", defaultTimeoutDurationMinutes)
	if err != nil {
		return nil, err
	}
	allocation, err := config.OptionalEnum(n, "allocation_strategy",
		emrtypes.SpotProvisioningAllocationStrategy("").Values())
	if err != nil {
		return nil, err
	}

	spec := &emrtypes.SpotProvisioningSpecification{
		BlockDurationMinutes:   blockDuration,
		TimeoutAction:          timeoutAction,
		TimeoutDurationMinutes: aws.Int32(timeoutDuration),
	}
	if allocation != nil {
		spec.AllocationStrategy = *allocation
	}

	return &emrtypes.InstanceFleetProvisioningSpecifications{SpotSpecification: spec}, nil
}
