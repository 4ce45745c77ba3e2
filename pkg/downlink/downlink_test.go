package downlink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestSendToRemote(t *testing.T) {
	d := NewDownlink(golog.NewTestLogger(t))
	srv := httptest.NewServer(d)
	defer srv.Close()

	err := SendToRemote(context.Background(), Frame{Name: "image_0001.jpg", Size: 2048, Score: 12.5}, srv.URL)
	test.That(t, err, test.ShouldBeNil)
	err = SendToRemote(context.Background(), Frame{Name: "image_0002.jpg", Size: 1024}, srv.URL)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, d.QueueSize(), test.ShouldEqual, uint64(3072))
	test.That(t, d.Frames(), test.ShouldEqual, uint64(2))
}

func TestSendToRemoteStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	err := SendToRemote(context.Background(), Frame{Name: "x"}, srv.URL)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "418")
}

func TestServeHTTPRejects(t *testing.T) {
	d := NewDownlink(golog.NewTestLogger(t))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	test.That(t, rec.Code, test.ShouldEqual, http.StatusMethodNotAllowed)

	rec = httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	test.That(t, rec.Code, test.ShouldEqual, http.StatusBadRequest)
	test.That(t, d.QueueSize(), test.ShouldEqual, uint64(0))
}

func TestReadNBytes(t *testing.T) {
	d := NewDownlink(golog.NewTestLogger(t))
	d.Receive("a", 100)

	test.That(t, d.ReadNBytes(30), test.ShouldEqual, uint64(30))
	test.That(t, d.QueueSize(), test.ShouldEqual, uint64(70))
	test.That(t, d.ReadNBytes(500), test.ShouldEqual, uint64(70))
	test.That(t, d.QueueSize(), test.ShouldEqual, uint64(0))
	test.That(t, d.ReadNBytes(1), test.ShouldEqual, uint64(0))
}

func TestDrain(t *testing.T) {
	d := NewDownlink(golog.NewTestLogger(t))
	d.Receive("a", 1000)

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	var reports []uint64
	d.Drain(ctx, 8*400, func(q uint64) { reports = append(reports, q) })

	test.That(t, reports, test.ShouldResemble, []uint64{600})
}
