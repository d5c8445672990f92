package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingRequiredConfig = errors.New("missing required config")
	ErrInvalidConfig         = errors.New("invalid config")
	ErrUnknownPlatform       = errors.New("unknown platform")
	ErrInvalidDomain         = errors.New("invalid domain")
	ErrMissingCredential     = errors.New("missing credential")
	ErrEdgeAddressTimeout    = errors.New("edge address timeout")
)

var (
	ErrOutputNotFound  = errors.New("output not found")
	ErrDriverNotFound  = errors.New("driver not found")
	ErrClusterNotReady = errors.New("cluster not ready")
)

// ConfigError annotates a configuration or credential failure with the offending key.
type ConfigError struct {
	Key    string
	Err    error
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Err, e.Key, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Key)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// MissingConfig returns a MissingRequiredConfig failure for key.
func MissingConfig(key string) error {
	return &ConfigError{Key: key, Err: ErrMissingRequiredConfig}
}

// InvalidConfig returns an InvalidConfig failure for key.
func InvalidConfig(key, detail string) error {
	return &ConfigError{Key: key, Err: ErrInvalidConfig, Detail: detail}
}

// MissingCredential returns a MissingCredential failure for key.
func MissingCredential(key string) error {
	return &ConfigError{Key: key, Err: ErrMissingCredential}
}
