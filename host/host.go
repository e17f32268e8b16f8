package host

import (
	"errors"
	"fmt"

	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

// DefaultNamespace is used when no explicit namespace is provided.
const DefaultNamespace = "tarmac"

// Func is the waPC host function signature used for capability calls.
type Func func(namespace, capability, function string, payload []byte) ([]byte, error)

var (
	// ErrHostCall wraps failures returned by the waPC host call itself.
	ErrHostCall = errors.New("host call failed")

	// ErrHostError means the host reported a failure status.
	ErrHostError = errors.New("host returned an error")

	// ErrHostResponseInvalid means the host reply was missing its status or
	// carried an unknown status code.
	ErrHostResponseInvalid = errors.New("host response invalid")
)

const (
	statusOK       = int32(200)
	statusPartial  = int32(206)
	statusBadInput = int32(400)
	statusMissing  = int32(404)
	statusError    = int32(500)
)

// Namespace returns ns, or DefaultNamespace when ns is empty.
func Namespace(ns string) string {
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}

// Call returns f, or wapc.HostCall when f is nil.
func Call(f Func) Func {
	if f == nil {
		return wapc.HostCall
	}
	return f
}

// CheckStatus translates a host status into an error. A nil status is
// invalid.
func CheckStatus(status *sdkproto.Status) error {
	if status == nil {
		return ErrHostResponseInvalid
	}

	switch code := status.GetCode(); code {
	case statusOK, statusPartial:
		return nil
	case statusBadInput, statusMissing, statusError:
		detail := fmt.Sprintf("host status %d", code)
		if msg := status.GetStatus(); msg != "" {
			detail = fmt.Sprintf("%s: %s", detail, msg)
		}
		return errors.Join(ErrHostError, errors.New(detail))
	default:
		return errors.Join(ErrHostResponseInvalid, fmt.Errorf("unexpected host status code %d", code))
	}
}
