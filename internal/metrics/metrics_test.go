// HalaConnect Realtime - Presence and Call Signaling Service
// Copyright 2026 HalaConnect
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/halaconnect/realtime

package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("reading metric: %v", err)
	}
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestRecordDelivery(t *testing.T) {
	delivered := counterValue(t, EventsDelivered.WithLabelValues("notification"))
	dropped := counterValue(t, EventsDropped.WithLabelValues("notification", "offline"))

	RecordDelivery("notification", true)
	RecordDelivery("notification", false)

	if got := counterValue(t, EventsDelivered.WithLabelValues("notification")); got != delivered+1 {
		t.Errorf("delivered counter = %v, want %v", got, delivered+1)
	}
	if got := counterValue(t, EventsDropped.WithLabelValues("notification", "offline")); got != dropped+1 {
		t.Errorf("dropped counter = %v, want %v", got, dropped+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := counterValue(t, APIRequestsActive)

	TrackActiveRequest(true)
	if got := counterValue(t, APIRequestsActive); got != base+1 {
		t.Errorf("active gauge = %v, want %v", got, base+1)
	}
	TrackActiveRequest(false)
	if got := counterValue(t, APIRequestsActive); got != base {
		t.Errorf("active gauge = %v, want %v", got, base)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	RecordAPIRequest("POST", "/v1/calls/initiate", 200, 30*time.Millisecond)

	m := &dto.Metric{}
	observer, err := APIRequestDuration.GetMetricWithLabelValues("POST", "/v1/calls/initiate", "200")
	if err != nil {
		t.Fatalf("fetching histogram: %v", err)
	}
	if err := observer.(interface{ Write(*dto.Metric) error }).Write(m); err != nil {
		t.Fatalf("reading histogram: %v", err)
	}
	if m.Histogram.GetSampleCount() == 0 {
		t.Error("histogram recorded no samples")
	}
}
