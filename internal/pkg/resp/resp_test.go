package resp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"twoogle/internal/pkg/errs"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var body JSONResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "alice_1"})

	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("status %d, content type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if body := decode(t, rec); body.Code != 0 || body.Data == nil {
		t.Errorf("body = %+v", body)
	}
}

func TestRespondError(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	RespondError(rec, r, errs.NewError(errs.ErrUserNotFound))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	if body := decode(t, rec); body.Code != errs.ErrUserNotFound || body.Data != nil {
		t.Errorf("body = %+v", body)
	}

	rec = httptest.NewRecorder()
	RespondError(rec, r, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError || decode(t, rec).Code != errs.ErrUnknown {
		t.Errorf("plain error: status %d body %s", rec.Code, rec.Body.String())
	}
}
