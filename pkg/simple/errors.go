package simple

import (
	"fmt"

	"github.com/matzehuels/simpleindex/pkg/errors"
)

// InvalidNameError reports a project name that cannot be normalized.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid project name %q: %s", e.Name, e.Reason)
}

// Code returns [errors.ErrCodeInvalidName].
func (e *InvalidNameError) Code() errors.Code { return errors.ErrCodeInvalidName }

// MalformedDocumentError reports a response that cannot be decoded at all:
// invalid JSON, a JSON value of the wrong shape, or an HTML details page
// without a single file link.
type MalformedDocumentError struct {
	Reason string
	Err    error // underlying parse error, may be nil
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed document: %s: %v", e.Reason, e.Err)
	}
	return "malformed document: " + e.Reason
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// Code returns [errors.ErrCodeMalformedDocument].
func (e *MalformedDocumentError) Code() errors.Code { return errors.ErrCodeMalformedDocument }

// MissingFieldError reports a required JSON key that is absent.
// Index is the position of the offending entry in its array, or -1 when the
// key is missing from the top-level document.
type MissingFieldError struct {
	Field string
	Index int
}

func (e *MissingFieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("missing required field %q in entry %d", e.Field, e.Index)
}

// Code returns [errors.ErrCodeMissingField].
func (e *MissingFieldError) Code() errors.Code { return errors.ErrCodeMissingField }

// UnsupportedVersionError reports a document whose major version differs
// from the one this package understands.
type UnsupportedVersionError struct {
	Declared SchemaVersion
	Known    SchemaVersion
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported api version %s (supported: %d.x up to %s)",
		e.Declared, e.Known.Major, e.Known)
}

// Code returns [errors.ErrCodeUnsupportedVersion].
func (e *UnsupportedVersionError) Code() errors.Code { return errors.ErrCodeUnsupportedVersion }
