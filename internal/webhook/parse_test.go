package webhook

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseEventJSONCoercesValues(t *testing.T) {
	body := `{"event_type":"media_del","item_isvirtual":false,"tmdb_id":123,"season_num":3,"media_name":"Foo","media_path":null,"extra":{"a":1}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	event, err := ParseEvent(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	want := map[string]string{
		"event_type":     "media_del",
		"item_isvirtual": "False",
		"tmdb_id":        "123",
		"season_num":     "3",
		"media_name":     "Foo",
		"extra":          `{"a":1}`,
	}
	for key, value := range want {
		if event[key] != value {
			t.Fatalf("field %s: got %q want %q", key, event[key], value)
		}
	}
	if _, ok := event["media_path"]; ok {
		t.Fatal("expected null value treated as absent")
	}
}

func TestParseEventJSONTrueBecomesPythonic(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"item_isvirtual":true}`))
	event, err := ParseEvent(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if event["item_isvirtual"] != "True" {
		t.Fatalf("expected True, got %q", event["item_isvirtual"])
	}
}

func TestParseEventForm(t *testing.T) {
	form := url.Values{
		"event_type":     {"media_del"},
		"item_isvirtual": {"False"},
		"media_type":     {"Episode", "ignored"},
	}
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	event, err := ParseEvent(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if event["event_type"] != "media_del" || event["media_type"] != "Episode" {
		t.Fatalf("unexpected event: %v", event)
	}
}

func TestParseEventErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", "   "},
		{"malformed json", `{"event_type":`},
		{"json array", `[1,2]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			if _, err := ParseEvent(httptest.NewRecorder(), req); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
