package compiler

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	"emr-fleet/internal/config"
)

// Storage defaults applied to every candidate.
const (
	DefaultEBSOptimized       = true
	DefaultVolumeType         = "gp2"
	DefaultVolumeSizeGB       = 256
	DefaultVolumesPerInstance = 1
)

// EBS compiles an ebs subtree. The result always holds exactly one block
// device config; heterogeneous volume layouts are not expressible.
func EBS(n *config.Node) (*emrtypes.EbsConfiguration, error) {
	optimized, err := config.Get(n, "optimized", DefaultEBSOptimized)
	if err != nil {
		return nil, err
	}
	volumeType, err := config.Get(n, "type", DefaultVolumeType)
	if err != nil {
		return nil, err
	}
	size, err := config.Get[int32](n, "size", DefaultVolumeSizeGB)
	if err != nil {
		return nil, err
	}
	iops, err := config.Optional[int32](n, "iops")
	if err != nil {
		return nil, err
	}
	perInstance, err := config.Get[int32](n, "volumes_per_instance", DefaultVolumesPerInstance)
	if err != nil {
		return nil, err
	}

	return &emrtypes.EbsConfiguration{
		EbsOptimized: aws.Bool(optimized),
		EbsBlockDeviceConfigs: []emrtypes.EbsBlockDeviceConfig{
			{
				VolumeSpecification: &emrtypes.VolumeSpecification{
					VolumeType: aws.String(volumeType),
					SizeInGB:   aws.Int32(size),
					Iops:       iops,
				},
				VolumesPerInstance: aws.Int32(perInstance),
			},
		},
	}, nil
}
