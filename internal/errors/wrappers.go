package errors

import "github.com/pkg/errors"

func WrappedErrNewLogger(err error) error {
	return errors.WithMessage(err, "new logger")
}

func WrappedErrEnumerateProcesses(err error) error {
	return errors.WithMessage(err, "enumerate processes")
}

func WrappedErrValidateConfig(err error) error {
	return errors.WithMessage(err, "validate config")
}

func WrappedErrNewPlane(err error) error {
	return errors.WithMessage(err, "new control plane")
}

func WrappedErrRunPlane(err error) error {
	return errors.WithMessage(err, "run control plane")
}

func WrappedErrRunRenderer(err error) error {
	return errors.WithMessage(err, "run renderer")
}
