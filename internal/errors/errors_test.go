package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCtlError_Error(t *testing.T) {
	err := New(ExitOptionsError, "options file write failed")
	if err.Error() != "options file write failed" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	wrapped := Wrap(ExitCacheError, "cache purge failed", errors.New("redis-cli not found"))
	if wrapped.Error() != "cache purge failed: redis-cli not found" {
		t.Errorf("unexpected message: %q", wrapped.Error())
	}
}

func TestCtlError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := OptionsError("write", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config error", ConfigError("bad toml", nil), ExitConfigError},
		{"options error", OptionsError("write", nil), ExitOptionsError},
		{"debconf error", DebconfError(errors.New("no such command")), ExitDebconfError},
		{"cache error", CacheError("memory probe failed", nil), ExitCacheError},
		{"proxy error", ProxyConfigError("/home/k/nginx.conf", nil), ExitProxyError},
		{"plain error", errors.New("boom"), ExitGeneralError},
		{"wrapped ctl error", fmt.Errorf("outer: %w", CacheError("inner", nil)), ExitCacheError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
