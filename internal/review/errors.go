package review

import "fmt"

// Op names the collaborator that failed.
type Op string

const (
	OpSecret   Op = "secret lookup"
	OpStore    Op = "review store"
	OpGenerate Op = "generation"
)

// UpstreamError wraps any failure from the secret store, the review store or
// the generation API.
type UpstreamError struct {
	Op  Op
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
