package failure

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// ErrStoreUnavailable marks any failure of an external collaborator (database,
// catalog backend). It is the only kind a caller may decide to retry.
var ErrStoreUnavailable = errors.New("store unavailable")

type unavailableError struct {
	cause error
}

func (e *unavailableError) Error() string {
	return ErrStoreUnavailable.Error() + ": " + e.cause.Error()
}

func (e *unavailableError) Unwrap() error { return e.cause }

func (e *unavailableError) Is(target error) bool { return target == ErrStoreUnavailable }

// Unavailable wraps err with the failing operation name. A nil err stays nil,
// and an error that is already a store failure is returned as is.
func Unavailable(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &unavailableError{cause: pkgerrors.Wrap(err, op)}
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
