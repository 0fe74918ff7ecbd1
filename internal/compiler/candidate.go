package compiler

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	"emr-fleet/internal/config"
)

const (
	defaultBidPercentage = 100.0
	defaultSpotUnits     = 1
)

// Candidate compiles one instance type option of a fleet. bid_price is passed
// through in the control plane's own price syntax.
func Candidate(n *config.Node) (emrtypes.InstanceTypeConfig, error) {
	instanceType, err := config.Require[string](n, "instance_type")
	if err != nil {
		return emrtypes.InstanceTypeConfig{}, err
	}
	bidPrice, err := config.Optional[string](n, "bid_price")
	if err != nil {
		return emrtypes.InstanceTypeConfig{}, err
	}
	bidPercentage, err := config.Get(n, "bid_percentage", defaultBidPercentage)
	if err != nil {
		return emrtypes.InstanceTypeConfig{}, err
	}
	spotUnits, err := config.Get[int32](n, "spot_units", defaultSpotUnits)
	if err != nil {
		return emrtypes.InstanceTypeConfig{}, err
	}
	configurations, err := SoftwareConfigurations(n, "configurations")
	if err != nil {
		return emrtypes.InstanceTypeConfig{}, err
	}
	ebsNode, err := n.NestedOrEmpty("ebs")
	if err != nil {
		return emrtypes.InstanceTypeConfig{}, err
	}
	ebs, err := EBS(ebsNode)
	if err != nil {
		return emrtypes.InstanceTypeConfig{}, err
	}

	return emrtypes.InstanceTypeConfig{
		InstanceType:                        aws.String(instanceType),
		BidPrice:                            bidPrice,
		BidPriceAsPercentageOfOnDemandPrice: aws.Float64(bidPercentage),
		WeightedCapacity:                    aws.Int32(spotUnits),
		Configurations:                      configurations,
		EbsConfiguration:                    ebs,
	}, nil
}
