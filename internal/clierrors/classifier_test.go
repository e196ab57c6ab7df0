package clierrors_test

import (
	"errors"
	"testing"

	"github.com/mcp-scooter/bridge/internal/clierrors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want clierrors.Kind
	}{
		{"nil", nil, clierrors.Kind("")},
		{"guest timeout", errors.New("guest echo: Timeout waiting for response"), clierrors.KindGuestTimeout},
		{"capability denial", errors.New("fetch: host not permitted by capabilities"), clierrors.KindCapabilityDeny},
		{"transport close", errors.New("shutdown requested"), clierrors.KindTransportClose},
		{"auth", errors.New("401 unauthorized"), clierrors.KindAuth},
		{"offline", errors.New("dial tcp: connection refused"), clierrors.KindOffline},
		{"not found", errors.New("registry: no such guest \"x\""), clierrors.KindNotFound},
		{"stdio exit", errors.New("exit status 1"), clierrors.KindStdioExit},
		{"http", errors.New("http: server closed"), clierrors.KindHTTP},
		{"other", errors.New("something weird"), clierrors.KindOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := clierrors.Classify(tc.err)
			assert.Equal(t, tc.want, got.Kind)
		})
	}
}

func TestClassified_UnwrapReturnsRaw(t *testing.T) {
	raw := errors.New("401 unauthorized")
	classified := clierrors.Classify(raw)
	assert.Same(t, raw, errors.Unwrap(classified))
}
