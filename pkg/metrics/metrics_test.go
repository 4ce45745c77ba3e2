package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.viam.com/test"
)

func TestObserveFrame(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	test.That(t, err, test.ShouldBeNil)

	c.ObserveFrame(12, true, 40*time.Millisecond)
	c.ObserveFrame(0.5, false, 20*time.Millisecond)

	test.That(t, testutil.ToFloat64(c.FramesScored), test.ShouldEqual, 2.0)
	test.That(t, testutil.ToFloat64(c.FramesRelevant), test.ShouldEqual, 1.0)
	test.That(t, testutil.CollectAndCount(c.Score), test.ShouldEqual, 1)
}

func TestObserveReading(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	test.That(t, err, test.ShouldBeNil)

	c.ObserveReading("temperature", 21.5, true)
	c.ObserveReading("humidity", 0, false)
	c.ObserveReading("humidity", 0, false)

	test.That(t, testutil.ToFloat64(c.TelemetryValues.WithLabelValues("temperature")), test.ShouldEqual, 21.5)
	test.That(t, testutil.ToFloat64(c.TelemetryFailures.WithLabelValues("humidity")), test.ShouldEqual, 2.0)
}

func TestObserveQueue(t *testing.T) {
	c, err := New(prometheus.NewRegistry())
	test.That(t, err, test.ShouldBeNil)

	c.ObserveQueue(4096)
	c.ObserveQueue(1024)
	test.That(t, testutil.ToFloat64(c.DownlinkQueue), test.ShouldEqual, 1024.0)
}

func TestRegisterTwiceReuses(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	test.That(t, err, test.ShouldBeNil)
	b, err := New(reg)
	test.That(t, err, test.ShouldBeNil)

	a.FramesScored.Inc()
	test.That(t, testutil.ToFloat64(b.FramesScored), test.ShouldEqual, 1.0)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.ObserveFrame(1, true, time.Second)
	c.ObserveReading("x", 1, true)
	c.ObserveQueue(10)
	test.That(t, c.Handler(), test.ShouldNotBeNil)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	test.That(t, err, test.ShouldBeNil)
	c.ObserveFrame(3, true, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	test.That(t, rec.Code, test.ShouldEqual, 200)
	test.That(t, strings.Contains(rec.Body.String(), "astropi_frames_relevant_total 1"), test.ShouldBeTrue)
}
