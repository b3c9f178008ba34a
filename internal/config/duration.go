package config

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files accept either Go duration
// strings ("1s", "750ms") or bare numbers of seconds.
type Duration struct {
	time.Duration
}

// Seconds returns the value as float seconds, the unit the JSON API speaks.
func (d Duration) Seconds() float64 {
	return d.Duration.Seconds()
}

// MarshalText renders the canonical duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalText parses a duration string or a number of seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	return d.parse(string(text))
}

// MarshalYAML renders the canonical duration string.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// UnmarshalYAML accepts "1s" style strings and numeric seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		var seconds float64
		if err := value.Decode(&seconds); err != nil {
			return fmt.Errorf("invalid duration %q", value.Value)
		}
		d.Duration = time.Duration(seconds * float64(time.Second))
		return nil
	}
	return d.parse(raw)
}

// MarshalJSON renders the canonical duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// UnmarshalJSON accepts strings and numeric seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		return d.parse(raw)
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	d.Duration = time.Duration(seconds * float64(time.Second))
	return nil
}

func (d *Duration) parse(raw string) error {
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		var seconds float64
		if _, scanErr := fmt.Sscanf(raw, "%f", &seconds); scanErr != nil {
			return fmt.Errorf("invalid duration %q", raw)
		}
		parsed = time.Duration(seconds * float64(time.Second))
	}
	d.Duration = parsed
	return nil
}
