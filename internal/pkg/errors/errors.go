package errors

import (
	"errors"
	"fmt"
)

// Release pipeline error classes. Callers wrap underlying causes with the
// helpers below and branch on class with errors.Is.
var (
	// ErrConfiguration marks invalid caller-supplied configuration. These are
	// surfaced by validation before a release starts, never mid-pipeline.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDataAvailability marks a release that cannot start: no pending
	// transformations for the requested version, or no eligible images.
	ErrDataAvailability = errors.New("no data available")

	// ErrTransformApplication marks a single image failing its transform,
	// copy or convert step. Contained: the image is skipped and counted.
	ErrTransformApplication = errors.New("transform application failed")

	// ErrPackaging marks ZIP assembly failure. Recoverable: the flat export
	// directory stands in as the release artifact.
	ErrPackaging = errors.New("packaging failed")

	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
)

func Configuration(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func DataAvailability(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDataAvailability, fmt.Sprintf(format, args...))
}

func TransformApplication(cause error, subject string) error {
	return fmt.Errorf("%w: %s: %v", ErrTransformApplication, subject, cause)
}

func Packaging(cause error) error {
	return fmt.Errorf("%w: %v", ErrPackaging, cause)
}
