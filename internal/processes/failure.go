package processes

import (
	stdLibErrors "errors"
	"fmt"

	"github.com/memlab/wilt/internal/types"
)

type FailureKind int

const (
	FailureTransient FailureKind = iota
	FailureGone
)

var failureKindNames = map[FailureKind]string{
	FailureTransient: "transient",
	FailureGone:      "gone",
}

func (fk FailureKind) String() string {
	name, found := failureKindNames[fk]
	if !found {
		return "unknown"
	}
	return name
}

var errPidReused = stdLibErrors.New("pid belongs to a newer process")

// SampleFailure is returned by Sampler when no Sample could be produced for an identity.
type SampleFailure struct {
	Kind     FailureKind
	Identity types.Identity
	Err      error
}

func (f *SampleFailure) Error() string {
	return fmt.Sprintf("sample '%s' (%s): %v", f.Identity, f.Kind, f.Err)
}

func (f *SampleFailure) Unwrap() error {
	return f.Err
}

func gone(identity types.Identity, err error) error {
	return &SampleFailure{Kind: FailureGone, Identity: identity, Err: err}
}

func transient(identity types.Identity, err error) error {
	return &SampleFailure{Kind: FailureTransient, Identity: identity, Err: err}
}

func IsGone(err error) bool {
	var failure *SampleFailure
	return stdLibErrors.As(err, &failure) && failure.Kind == FailureGone
}

func IsTransient(err error) bool {
	var failure *SampleFailure
	return stdLibErrors.As(err, &failure) && failure.Kind == FailureTransient
}
