package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// FormLayout is the value format of an HTML datetime-local input.
const FormLayout = "2006-01-02T15:04"

// layouts seen from the backend: zone-less local date-times, with or
// without fractional seconds, and plain RFC 3339.
var layouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	FormLayout,
	time.RFC3339Nano,
	time.RFC3339,
}

// LocalTime is a timestamp decoded from the backend's JSON.
type LocalTime struct {
	time.Time
}

func ParseLocalTime(s string) (LocalTime, error) {
	var last error
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return LocalTime{t}, nil
		} else {
			last = err
		}
	}
	return LocalTime{}, last
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = LocalTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = LocalTime{}
		return nil
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// FormInput renders the value for a datetime-local input.
func (t LocalTime) FormInput() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(FormLayout)
}
