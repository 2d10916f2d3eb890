package provider

import "context"

// ErrorKind classifies ordinary vendor failure modes. Adapters never return
// untyped errors for these; the orchestrator advances the chain on any of them.
type ErrorKind string

const (
	KindQuota       ErrorKind = "quota"
	KindAuth        ErrorKind = "auth"
	KindNetwork     ErrorKind = "network"
	KindEmptyResult ErrorKind = "empty_result"
	KindUnavailable ErrorKind = "unavailable"
)

// Error is the typed failure returned by adapters.
type Error struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return e.Provider + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(provider string, kind ErrorKind, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Err: err}
}

// Result is the normalized success shape. Exactly one of ImageURL or
// ImageData is set, depending on what the vendor returns.
type Result struct {
	ImageURL  string
	ImageData []byte
}

// Generator is a text-to-image adapter.
type Generator interface {
	Name() string
	// Available reports whether the adapter is configured. Must not touch
	// the network.
	Available() bool
	Generate(ctx context.Context, prompt, negative string, size int) (*Result, error)
}

// PhotoTransformer is an image-conditioned adapter (uploaded photo path).
type PhotoTransformer interface {
	Name() string
	Available() bool
	TransformPhoto(ctx context.Context, imageURL, prompt, negative string) (*Result, error)
}

// Enhancer rewrites a prompt into a richer one. Best-effort: implementations
// return the original prompt on any failure, never an error.
type Enhancer interface {
	Enhance(ctx context.Context, prompt string) string
}
