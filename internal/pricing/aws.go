package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	ptypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// ErrNoPrice is returned when AWS reports no price for an instance type.
var ErrNoPrice = errors.New("no price available")

// SpotPriceAPI is the subset of the EC2 client used for spot prices.
type SpotPriceAPI interface {
	DescribeSpotPriceHistory(ctx context.Context, params *ec2.DescribeSpotPriceHistoryInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSpotPriceHistoryOutput, error)
}

// ProductsAPI is the subset of the Pricing client used for on-demand prices.
type ProductsAPI interface {
	GetProducts(ctx context.Context, params *pricing.GetProductsInput, optFns ...func(*pricing.Options)) (*pricing.GetProductsOutput, error)
}

type PriceClient struct {
	EC2Client     SpotPriceAPI
	PricingClient ProductsAPI
}

func NewPriceClient(cfg aws.Config) *PriceClient {
	// Pricing API is only available in us-east-1 or ap-south-1
	pricingCfg := cfg.Copy()
	pricingCfg.Region = "us-east-1"

	return &PriceClient{
		EC2Client:     ec2.NewFromConfig(cfg),
		PricingClient: pricing.NewFromConfig(pricingCfg),
	}
}

// GetSpotPrice returns the current Linux spot price of instType in az, or the
// cheapest price across the region when az is empty.
func (pc *PriceClient) GetSpotPrice(ctx context.Context, instType, az string) (float64, error) {
	input := &ec2.DescribeSpotPriceHistoryInput{
		InstanceTypes:       []ec2types.InstanceType{ec2types.InstanceType(instType)},
		ProductDescriptions: []string{"Linux/UNIX"},
		StartTime:           aws.Time(time.Now()),
	}
	if az != "" {
		input.AvailabilityZone = aws.String(az)
		input.MaxResults = aws.Int32(1)
	}

	out, err := pc.EC2Client.DescribeSpotPriceHistory(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to describe spot price history for %s: %w", instType, err)
	}

	cheapest := -1.0
	for _, h := range out.SpotPriceHistory {
		price, err := strconv.ParseFloat(aws.ToString(h.SpotPrice), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid spot price %q for %s: %w", aws.ToString(h.SpotPrice), instType, err)
		}
		if cheapest < 0 || price < cheapest {
			cheapest = price
		}
	}
	if cheapest < 0 {
		return 0, fmt.Errorf("spot price for %s: %w", instType, ErrNoPrice)
	}
	return cheapest, nil
}

func (pc *PriceClient) GetOnDemandPrice(ctx context.Context, instType, region string) (float64, error) {
	filters := []ptypes.Filter{
		{Type: ptypes.FilterTypeTermMatch, Field: aws.String("instanceType"), Value: aws.String(instType)},
		{Type: ptypes.FilterTypeTermMatch, Field: aws.String("regionCode"), Value: aws.String(region)},
		{Type: ptypes.FilterTypeTermMatch, Field: aws.String("operatingSystem"), Value: aws.String("Linux")},
		{Type: ptypes.FilterTypeTermMatch, Field: aws.String("preInstalledSw"), Value: aws.String("NA")},
		{Type: ptypes.FilterTypeTermMatch, Field: aws.String("tenancy"), Value: aws.String("Shared")},
		{Type: ptypes.FilterTypeTermMatch, Field: aws.String("capacitystatus"), Value: aws.String("Used")},
	}

	out, err := pc.PricingClient.GetProducts(ctx, &pricing.GetProductsInput{
		ServiceCode: aws.String("AmazonEC2"),
		Filters:     filters,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get on-demand price for %s: %w", instType, err)
	}
	if len(out.PriceList) == 0 {
		return 0, fmt.Errorf("on-demand price for %s in %s: %w", instType, region, ErrNoPrice)
	}

	return parseOnDemandUSDPrice(out.PriceList[0])
}

type priceListItem struct {
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// parseOnDemandUSDPrice extracts the hourly USD price from one Pricing API
// price list entry.
func parseOnDemandUSDPrice(item string) (float64, error) {
	var parsed priceListItem
	if err := json.Unmarshal([]byte(item), &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse price list item: %w", err)
	}

	for _, term := range parsed.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			usd, ok := dim.PricePerUnit["USD"]
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(usd, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid USD price %q: %w", usd, err)
			}
			return price, nil
		}
	}
	return 0, fmt.Errorf("price list item has no USD on-demand price: %w", ErrNoPrice)
}
