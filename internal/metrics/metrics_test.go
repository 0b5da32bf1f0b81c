// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// histogramSamples returns the observation count of a histogram.
func histogramSamples(h prometheus.Histogram) uint64 {
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestStatusClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   string
	}{
		{0, "error"},
		{-1, "error"},
		{200, "2xx"},
		{204, "2xx"},
		{429, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		if got := StatusClass(tt.status); got != tt.want {
			t.Errorf("StatusClass(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestRecordPOSRetry(t *testing.T) {
	before := testutil.ToFloat64(POSRetriesTotal.WithLabelValues("rate_limited"))
	RecordPOSRetry("rate_limited")
	RecordPOSRetry("rate_limited")
	after := testutil.ToFloat64(POSRetriesTotal.WithLabelValues("rate_limited"))

	if after-before != 2 {
		t.Errorf("expected 2 retries recorded, got %v", after-before)
	}
}

func TestRecordTokenRefresh(t *testing.T) {
	okBefore := testutil.ToFloat64(POSTokenRefreshes.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(POSTokenRefreshes.WithLabelValues("error"))

	RecordTokenRefresh(nil)
	RecordTokenRefresh(errors.New("401"))

	if got := testutil.ToFloat64(POSTokenRefreshes.WithLabelValues("success")) - okBefore; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(POSTokenRefreshes.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestUpdateRetryQueueDepth(t *testing.T) {
	UpdateRetryQueueDepth(map[string]int{"pending": 3, "abandoned": 1})

	if got := testutil.ToFloat64(RetryQueueDepth.WithLabelValues("pending")); got != 3 {
		t.Errorf("pending depth = %v, want 3", got)
	}
	if got := testutil.ToFloat64(RetryQueueDepth.WithLabelValues("abandoned")); got != 1 {
		t.Errorf("abandoned depth = %v, want 1", got)
	}
}

func TestRecordMenuSync(t *testing.T) {
	before := testutil.ToFloat64(MenuItemsSynced.WithLabelValues("full"))
	RecordMenuSync("full", 150*time.Millisecond, 12, nil)
	if got := testutil.ToFloat64(MenuItemsSynced.WithLabelValues("full")) - before; got != 12 {
		t.Errorf("items delta = %v, want 12", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordRateLimitWait(t *testing.T) {
	before := histogramSamples(POSRateLimitWait)
	RecordRateLimitWait(250 * time.Millisecond)
	if got := histogramSamples(POSRateLimitWait) - before; got != 1 {
		t.Errorf("samples delta = %d, want 1", got)
	}
}
