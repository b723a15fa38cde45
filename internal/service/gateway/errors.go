package gateway

import (
	"errors"
	"fmt"

	pkghttp "StonkPulse/pkg/http"
)

// Kind classifies why a fetch failed.
type Kind string

const (
	KindNetwork Kind = "network" // request could not complete or upstream answered non-2xx
	KindDecode  Kind = "decode"  // body did not have the expected shape
	KindEmpty   Kind = "empty"   // well-formed but nothing usable
)

var (
	ErrNetwork   = errors.New("gateway: network")
	ErrDecode    = errors.New("gateway: decode")
	ErrEmptyData = errors.New("gateway: empty data")
)

// FetchError is the only error type returned by Client.
type FetchError struct {
	Kind     Kind
	Endpoint string
	Symbol   string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Endpoint, e.Symbol, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match the Kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrEmptyData:
		return e.Kind == KindEmpty
	}
	return false
}

// KindOf returns the Kind of a FetchError, or "" for anything else.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func decodeErr(format string, args ...any) error {
	return &FetchError{Kind: KindDecode, Err: fmt.Errorf(format, args...)}
}

func emptyErr(format string, args ...any) error {
	return &FetchError{Kind: KindEmpty, Err: fmt.Errorf(format, args...)}
}

// classify turns any error from the transport or a decoder into a FetchError
// tagged with endpoint and symbol.
func classify(endpoint, symbol string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		out := *fe
		out.Endpoint = endpoint
		out.Symbol = symbol
		return &out
	}
	kind := KindNetwork
	if errors.Is(err, pkghttp.ErrDecode) {
		kind = KindDecode
	}
	return &FetchError{Kind: kind, Endpoint: endpoint, Symbol: symbol, Err: err}
}
