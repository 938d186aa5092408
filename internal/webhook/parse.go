package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"mediasyncdel/internal/syncdel"
)

const maxBodyBytes = 1 << 20

// ErrEmptyBody is returned for requests without a payload.
var ErrEmptyBody = errors.New("empty request body")

// ParseEvent decodes a webhook request into a RawEvent. JSON is used for
// application/json bodies and for bodies that start with '{'; everything else
// is parsed as a form.
func ParseEvent(w http.ResponseWriter, r *http.Request) (syncdel.RawEvent, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyBody
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" || trimmed[0] == '{' {
		return DecodeJSON(trimmed)
	}
	return decodeForm(r, body)
}

// DecodeJSON converts a JSON object into a RawEvent using the same value
// rendering as the webhook endpoint.
func DecodeJSON(body []byte) (syncdel.RawEvent, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if fields == nil {
		return nil, errors.New("decode json: expected an object")
	}
	event := make(syncdel.RawEvent, len(fields))
	for key, value := range fields {
		if rendered, ok := renderValue(value); ok {
			event[key] = rendered
		}
	}
	return event, nil
}

func decodeForm(r *http.Request, body []byte) (syncdel.RawEvent, error) {
	r.Body = io.NopCloser(bytes.NewReader(body))
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	event := make(syncdel.RawEvent, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			event[key] = values[0]
		}
	}
	return event, nil
}

// renderValue turns a decoded JSON value into the string the pipeline
// expects. null is treated as absent.
func renderValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		if v {
			return "True", true
		}
		return "False", true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(encoded), true
	}
}
