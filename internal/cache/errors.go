package cache

import "fmt"

// ConfigError is returned by New for an unusable backend configuration.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// BackendError wraps a failure from the underlying store.
type BackendError struct {
	Op    string
	Key   string
	Cause error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}
