package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCheckoutMetrics(reg)
	metrics.ObserveSuccess(2, decimal.RequireFromString("20.97"))
	metrics.IncOutcome(OutcomeEmptyCart)
	metrics.IncOutcome(OutcomeEmptyCart)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_attempts_total", "outcome", OutcomeSuccess); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_attempts_total", "outcome", OutcomeEmptyCart); err != nil {
		t.Fatalf("fetch empty cart: %v", err)
	} else if got != 2 {
		t.Fatalf("expected empty_cart=2, got %f", got)
	}

	charged := findMetricFamily(mfs, "checkout_charged_amount_total")
	if charged == nil || charged.GetMetric()[0].GetCounter().GetValue() < 20.96 {
		t.Fatalf("expected charged amount to be recorded")
	}
}

func TestOTPMetricsCountsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOTPMetrics(reg)
	metrics.IncIssued()
	metrics.IncVerification("expired")
	metrics.IncDelivery("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "otp_verifications_total", "result", "expired"); err != nil || got != 1 {
		t.Fatalf("expected expired=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "otp_delivery_total", "result", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected blank label to normalize to unknown, got %f (%v)", got, err)
	}
}

func TestHTTPMetricsObservesDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe("POST", "/api/v1/checkout", 200, 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/api/v1/checkout"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCronJobMetricsSplitsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	metrics.ObserveDuration("guest-cart-expiry", 250*time.Millisecond)
	metrics.IncSuccess("guest-cart-expiry")
	metrics.IncSuccess("guest-cart-expiry")
	metrics.IncFailure("guest-cart-expiry")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "cron_job_runs_total", "result", "success"); err != nil || got != 2 {
		t.Fatalf("expected success=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "cron_job_runs_total", "result", "failure"); err != nil || got != 1 {
		t.Fatalf("expected failure=1, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "cron_job_duration_seconds", "job", "guest-cart-expiry"); err != nil || got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f (%v)", got, err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var checkout *CheckoutMetrics
	checkout.ObserveSuccess(1, decimal.NewFromInt(1))
	checkout.IncOutcome(OutcomeError)
	NewOTPMetrics(nil).IncIssued()
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	var cron *CronJobMetrics
	cron.IncFailure("job")
	NewCronJobMetrics(nil).ObserveDuration("job", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
