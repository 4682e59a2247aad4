package feedclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"wincloud_hotel/internal/adapters/feedclient"
)

const pushPayload = `<?xml version="1.0"?><OTA_HotelInvCountNotifRQ EchoToken="t1"/>`

func TestClient_Push_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(503)
		default:
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "EchoToken") {
				t.Errorf("payload not delivered intact: %s", body)
			}
			if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "xml") {
				t.Errorf("content type: %s", ct)
			}
			w.WriteHeader(200)
			w.Write([]byte(`<OTA_HotelInvCountNotifRS EchoToken="t1"><Success/></OTA_HotelInvCountNotifRS>`))
		}
	}))
	defer ts.Close()

	cl, err := feedclient.New(ts.URL, 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := cl.Push(ctx, []byte(pushPayload))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Status != 200 {
		t.Fatalf("status: %d", res.Status)
	}
	if !strings.Contains(string(res.Body), "<Success/>") {
		t.Fatalf("unexpected body: %s", res.Body)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Push_PermanentFaultIsAResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		w.Write([]byte(`<OTA_ErrorRS EchoToken="t1"><Errors><Error Type="UnsupportedRequest">bad root</Error></Errors></OTA_ErrorRS>`))
	}))
	defer ts.Close()

	cl, err := feedclient.New(ts.URL, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := cl.Push(ctx, []byte(pushPayload))
	if err != nil {
		t.Fatalf("a 400 RS document is an answer, not a transport error: %v", err)
	}
	if res.Status != 400 {
		t.Fatalf("status: %d", res.Status)
	}
	if !strings.Contains(string(res.Body), "<Errors>") {
		t.Fatalf("unexpected body: %s", res.Body)
	}
}

func TestClient_Push_HonorsRetryAfter(t *testing.T) {
	var hits int32
	start := time.Now()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(429)
			return
		}
		w.WriteHeader(200)
	}))
	defer ts.Close()

	cl, err := feedclient.New(ts.URL, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := cl.Push(ctx, []byte(pushPayload))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Status != 200 {
		t.Fatalf("status: %d", res.Status)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Fatalf("did not honor Retry-After, took %v", elapsed)
	}
}

func TestClient_Push_ContextCancelStopsRetrying(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl, err := feedclient.New(ts.URL, 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if _, err := cl.Push(ctx, []byte(pushPayload)); err == nil {
		t.Fatal("expected an error after cancellation")
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := feedclient.New("", 5); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
