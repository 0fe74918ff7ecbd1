package models

// FleetEstimate is the hourly cost of one fleet when it is filled with its
// cheapest candidate.
type FleetEstimate struct {
	Role                   string  `json:"role"`
	InstanceType           string  `json:"instance_type"`
	SpotUnits              int32   `json:"spot_units"`
	TargetSpotCapacity     int32   `json:"target_spot_capacity"`
	TargetOnDemandCapacity int32   `json:"target_on_demand_capacity"`
	Instances              int32   `json:"instances"`
	SpotPrice              float64 `json:"spot_price"`
	OnDemandPrice          float64 `json:"on_demand_price"`
	HourlyCost             float64 `json:"hourly_cost"`
}

// Estimate is the hourly cost of a whole cluster request.
type Estimate struct {
	Region     string          `json:"region"`
	Fleets     []FleetEstimate `json:"fleets"`
	HourlyCost float64         `json:"hourly_cost"`
}
