package mailer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"renthub/internal/adapters/mailer"
)

func TestClient_Send_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			var msg struct {
				To      []string `json:"to"`
				Subject string   `json:"subject"`
			}
			_ = json.NewDecoder(r.Body).Decode(&msg)
			if len(msg.To) != 1 || msg.Subject != "Rent Receipt" {
				w.WriteHeader(422)
				return
			}
			w.WriteHeader(202)
		}
	}))
	defer ts.Close()

	cl, err := mailer.New(ts.URL, "test-key", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cl.Send(ctx, []string{"owner@example.com"}, "Rent Receipt", "Payment p1 received: 500.00"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Send_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no recipients", http.StatusBadRequest)
	}))
	defer ts.Close()

	cl, err := mailer.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := cl.Send(ctx, nil, "s", "b"); err == nil {
		t.Fatalf("expected error for 400")
	}
}

func TestClient_RequiresKey(t *testing.T) {
	if _, err := mailer.New("http://localhost", "", 5); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
