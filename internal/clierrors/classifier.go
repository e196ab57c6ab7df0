// Package clierrors classifies client-side errors the scooter CLI sees when
// talking to the bridge daemon into a small set of kinds with a
// user-facing hint (spec §7: "this is strictly a CLI convenience layer on
// top of the error envelope ... not a replacement for it").
//
// The substring-sniffing Classify function is adapted directly from the
// teacher's internal/cli/errors.Classify, extended with the bridge-specific
// failure modes that have no analogue in the teacher's external-MCP-server
// world: guest timeout, capability denial, transport close.
package clierrors

import "strings"

type Kind string

const (
	KindAuth           Kind = "auth"
	KindOffline        Kind = "offline"
	KindHTTP           Kind = "http"
	KindStdioExit      Kind = "stdio-exit"
	KindNotFound       Kind = "not-found"
	KindGuestTimeout   Kind = "guest-timeout"
	KindCapabilityDeny Kind = "capability-denied"
	KindTransportClose Kind = "transport-closed"
	KindOther          Kind = "other"
)

// Classified wraps an underlying error with a kind and a short suggestion.
type Classified struct {
	Kind    Kind
	Message string
	Hint    string
	Raw     error
}

func (e Classified) Error() string { return e.Message }
func (e Classified) Unwrap() error { return e.Raw }

// Classify inspects err's message for known substrings and returns the best
// matching kind. Order matters: more specific bridge failures are checked
// before the teacher's general categories so "capability" doesn't fall
// through to "other" just because it also contains no HTTP status code.
func Classify(err error) Classified {
	if err == nil {
		return Classified{}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "timeout waiting for response"):
		return Classified{
			Kind:    KindGuestTimeout,
			Message: err.Error(),
			Hint:    "The guest never called MCP.writeLine in time. Check the guest's read loop.",
			Raw:     err,
		}
	case strings.Contains(msg, "no host transport attached") || strings.Contains(msg, "not allowed by capabilities") || strings.Contains(msg, "host not permitted"):
		return Classified{
			Kind:    KindCapabilityDeny,
			Message: err.Error(),
			Hint:    "The guest's capabilities don't allow this host or path. Check allowed_hosts/read_paths/write_paths.",
			Raw:     err,
		}
	case strings.Contains(msg, "shutdown requested") || strings.Contains(msg, "eof") || strings.Contains(msg, "use of closed"):
		return Classified{
			Kind:    KindTransportClose,
			Message: err.Error(),
			Hint:    "The connection to the bridge daemon closed. Check whether it's still running.",
			Raw:     err,
		}
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid_token"):
		return Classified{
			Kind:    KindAuth,
			Message: err.Error(),
			Hint:    "Check your provider API key or re-run the provider login flow.",
			Raw:     err,
		}
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "timeout") || strings.Contains(msg, "econnrefused"):
		return Classified{
			Kind:    KindOffline,
			Message: err.Error(),
			Hint:    "Is scooter-bridge running? Try 'scooter status' or start it.",
			Raw:     err,
		}
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found") || strings.Contains(msg, "no such guest"):
		return Classified{
			Kind:    KindNotFound,
			Message: err.Error(),
			Hint:    "The requested guest or tool was not found. Check the id/name.",
			Raw:     err,
		}
	case strings.Contains(msg, "exit status") || strings.Contains(msg, "signal:"):
		return Classified{
			Kind:    KindStdioExit,
			Message: err.Error(),
			Hint:    "The guest process exited unexpectedly.",
			Raw:     err,
		}
	case strings.Contains(msg, "http"):
		return Classified{
			Kind:    KindHTTP,
			Message: err.Error(),
			Hint:    "An HTTP error occurred talking to the bridge daemon.",
			Raw:     err,
		}
	default:
		return Classified{
			Kind:    KindOther,
			Message: err.Error(),
			Hint:    "An unexpected error occurred.",
			Raw:     err,
		}
	}
}
