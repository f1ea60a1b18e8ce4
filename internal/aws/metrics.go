package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics emits checkout metrics to CloudWatch. Emission is best-effort at
// call sites: a metric failure never fails a checkout.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewMetrics returns a Metrics emitter publishing under the given namespace.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// RecordOrderCreated publishes an OrdersCreated count of 1 and the order's
// grand total (converted from kobo to naira) for the given buyer role.
func (m *Metrics) RecordOrderCreated(ctx context.Context, buyerRole string, grandTotalKobo int64) error {
	now := m.nowFunc()
	dims := []cwtypes.Dimension{
		{Name: awsString("BuyerRole"), Value: awsString(buyerRole)},
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("OrdersCreated"),
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitCount,
				Value:      awsFloat64(1),
				Dimensions: dims,
			},
			{
				MetricName: awsString("OrderValue"),
				Timestamp:  &now,
				Unit:       cwtypes.StandardUnitNone,
				Value:      awsFloat64(float64(grandTotalKobo) / 100.0),
				Dimensions: dims,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func awsFloat64(f float64) *float64 { return &f }
