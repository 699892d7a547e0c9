package abacus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commercekit/shopchat/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.GenerationConfig{APIKey: "test-key", BaseURL: srv.URL, DeploymentID: "dep-1"})
}

func TestConverse(t *testing.T) {
	var gotReq converseRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getChatResponse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if key := r.Header.Get("apiKey"); key != "test-key" {
			t.Errorf("unexpected apiKey header %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"success":true,"answer":"30 days.","conversation_id":"conv-2"}`)
	})

	answer, handle, err := c.Converse(context.Background(), "return policy?", "conv-1")
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if answer != "30 days." || handle != "conv-2" {
		t.Fatalf("unexpected result: %q %q", answer, handle)
	}
	if gotReq.DeploymentID != "dep-1" || gotReq.Message != "return policy?" || gotReq.ConversationID != "conv-1" {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
}

func TestConverseFreshConversationOmitsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if _, ok := raw["conversation_id"]; ok {
			t.Errorf("empty conversation id must be omitted from the request")
		}
		fmt.Fprint(w, `{"success":true,"answer":"hi","conversation_id":"conv-1"}`)
	})

	if _, _, err := c.Converse(context.Background(), "hello", ""); err != nil {
		t.Fatalf("Converse: %v", err)
	}
}

func TestConverseBackendFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"error":"deployment offline"}`)
	})
	if _, _, err := c.Converse(context.Background(), "hello", ""); err == nil {
		t.Fatalf("expected error for success:false")
	}
}

func TestConverseHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, _, err := c.Converse(context.Background(), "hello", ""); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}
