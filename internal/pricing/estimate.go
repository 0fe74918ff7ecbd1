package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/emr"
	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"

	"emr-fleet/pkg/models"
)

type quote struct {
	spot     float64
	onDemand float64
}

// Estimate prices every fleet of req in region. Each fleet is assumed to be
// filled entirely with the candidate that is cheapest per weighted unit for
// the kind of capacity the fleet targets.
func (pc *PriceClient) Estimate(ctx context.Context, req *emr.RunJobFlowInput, region string) (*models.Estimate, error) {
	if req.Instances == nil {
		return nil, fmt.Errorf("request has no instance fleets")
	}

	var zones []string
	if p := req.Instances.Placement; p != nil {
		zones = p.AvailabilityZones
	}

	quotes := map[string]quote{}
	estimate := &models.Estimate{Region: region}

	for _, fleet := range req.Instances.InstanceFleets {
		var best *models.FleetEstimate
		for _, candidate := range fleet.InstanceTypeConfigs {
			instanceType := aws.ToString(candidate.InstanceType)
			q, ok := quotes[instanceType]
			if !ok {
				var err error
				q, err = pc.quote(ctx, instanceType, region, zones)
				if err != nil {
					return nil, err
				}
				quotes[instanceType] = q
			}

			fe := fleetEstimate(fleet, candidate, q)
			if best == nil || fe.HourlyCost < best.HourlyCost {
				best = &fe
			}
		}
		if best == nil {
			continue
		}

		estimate.Fleets = append(estimate.Fleets, *best)
		estimate.HourlyCost += best.HourlyCost
	}

	return estimate, nil
}

func (pc *PriceClient) quote(ctx context.Context, instanceType, region string, zones []string) (quote, error) {
	spot, err := pc.cheapestSpot(ctx, instanceType, zones)
	if err != nil {
		return quote{}, err
	}
	onDemand, err := pc.GetOnDemandPrice(ctx, instanceType, region)
	if err != nil {
		return quote{}, err
	}
	return quote{spot: spot, onDemand: onDemand}, nil
}

func (pc *PriceClient) cheapestSpot(ctx context.Context, instanceType string, zones []string) (float64, error) {
	if len(zones) == 0 {
		return pc.GetSpotPrice(ctx, instanceType, "")
	}

	cheapest := -1.0
	for _, az := range zones {
		price, err := pc.GetSpotPrice(ctx, instanceType, az)
		if err != nil {
			return 0, err
		}
		if cheapest < 0 || price < cheapest {
			cheapest = price
		}
	}
	return cheapest, nil
}

func fleetEstimate(fleet emrtypes.InstanceFleetConfig, candidate emrtypes.InstanceTypeConfig, q quote) models.FleetEstimate {
	weight := aws.ToInt32(candidate.WeightedCapacity)
	if weight < 1 {
		weight = 1
	}
	targetSpot := aws.ToInt32(fleet.TargetSpotCapacity)
	targetOnDemand := aws.ToInt32(fleet.TargetOnDemandCapacity)

	spotInstances := instancesFor(targetSpot, weight)
	onDemandInstances := instancesFor(targetOnDemand, weight)

	return models.FleetEstimate{
		Role:                   strings.ToLower(string(fleet.InstanceFleetType)),
		InstanceType:           aws.ToString(candidate.InstanceType),
		SpotUnits:              weight,
		TargetSpotCapacity:     targetSpot,
		TargetOnDemandCapacity: targetOnDemand,
		Instances:              spotInstances + onDemandInstances,
		SpotPrice:              q.spot,
		OnDemandPrice:          q.onDemand,
		HourlyCost:             float64(spotInstances)*q.spot + float64(onDemandInstances)*q.onDemand,
	}
}

// instancesFor rounds capacity up to whole instances of the given weight.
func instancesFor(capacity, weight int32) int32 {
	if capacity <= 0 {
		return 0
	}
	return (capacity + weight - 1) / weight
}
