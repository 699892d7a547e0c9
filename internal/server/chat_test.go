package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakeResponder struct {
	response string
	err      error

	userID  string
	message string
}

func (f *fakeResponder) Process(ctx context.Context, userID, message string) (string, error) {
	f.userID = userID
	f.message = message
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newChatTestServer(r Responder) *echo.Echo {
	e := echo.New()
	h := &ChatHandler{Chat: r}
	h.Register(e.Group("/api"))
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	resp := &fakeResponder{response: "You can return items within 30 days."}
	e := newChatTestServer(resp)

	rec := postJSON(e, "/api/chat", `{"user_id":"user-1","message":"return policy?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["response"] != resp.response {
		t.Fatalf("unexpected body: %v", body)
	}
	if resp.userID != "user-1" || resp.message != "return policy?" {
		t.Fatalf("orchestrator received %q %q", resp.userID, resp.message)
	}
}

func TestChatEndpointRejectsMissingFields(t *testing.T) {
	e := newChatTestServer(&fakeResponder{})

	for _, body := range []string{
		`{"user_id":"user-1"}`,
		`{"message":"hi"}`,
		`{"user_id":"  ","message":"hi"}`,
	} {
		rec := postJSON(e, "/api/chat", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d", body, rec.Code)
		}
	}
}

func TestChatEndpointInternalError(t *testing.T) {
	e := newChatTestServer(&fakeResponder{err: errors.New("boom")})
	rec := postJSON(e, "/api/chat", `{"user_id":"user-1","message":"hi"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
