package model

import (
	"encoding/json"
	"log/slog"
)

const redacted = "[REDACTED]"

// Secret holds sensitive material. Every textual rendering is redacted;
// only Reveal yields the raw value.
type Secret string

// Reveal returns the raw secret value.
func (s Secret) Reveal() string { return string(s) }

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool { return s == "" }

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s Secret) GoString() string { return `model.Secret("` + s.String() + `")` }

func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s Secret) MarshalYAML() (any, error) { return s.String(), nil }

func (s Secret) LogValue() slog.Value { return slog.StringValue(s.String()) }
