package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"twoogle/internal/pkg/errs"
)

func TestBindJSON(t *testing.T) {
	type body struct {
		Text string `json:"text"`
	}

	tests := []struct {
		name        string
		contentType string
		payload     string
		wantCode    int
	}{
		{"ok", "application/json", `{"text":"hi"}`, 0},
		{"charset", "application/json; charset=utf-8", `{"text":"hi"}`, 0},
		{"wrong type", "text/plain", `{"text":"hi"}`, errs.ErrUnsupportedMediaType},
		{"syntax", "application/json", `{"text":`, errs.ErrInvalidJSONFormat},
		{"unknown field", "application/json", `{"other":1}`, errs.ErrInvalidJSONFormat},
		{"trailing", "application/json", `{"text":"a"}{"text":"b"}`, errs.ErrExtraContentInBody},
		{"too large", "application/json", `{"text":"` + strings.Repeat("x", int(MaxBodySize)) + `"}`, errs.ErrInvalidParams},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
		r.Header.Set("Content-Type", tt.contentType)

		var dst body
		err := BindJSON(httptest.NewRecorder(), r, &dst)
		switch {
		case tt.wantCode == 0 && err != nil:
			t.Errorf("%s: unexpected error %v", tt.name, err)
		case tt.wantCode != 0 && (err == nil || err.Code != tt.wantCode):
			t.Errorf("%s: got %v, want code %d", tt.name, err, tt.wantCode)
		}
	}
}

func TestQueryLimit(t *testing.T) {
	tests := []struct {
		query string
		want  int
		ok    bool
	}{
		{"", 5, true},
		{"?limit=10", 10, true},
		{"?limit=0", 0, false},
		{"?limit=101", 0, false},
		{"?limit=ten", 0, false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/feed"+tt.query, nil)
		got, err := QueryLimit(r, 5)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("QueryLimit(%q) = %d, %v", tt.query, got, err)
		}
	}
}
