package monitor

import "errors"

var (
	// ErrDisabled is returned by triggers when no API credential is configured
	ErrDisabled            = errors.New("monitoring is disabled")
	ErrStopped             = errors.New("monitoring has been stopped")
	ErrChannelUnresolvable = errors.New("live message channel cannot be resolved")
	ErrMessageUnresolvable = errors.New("live message cannot be resolved")
	ErrPermissionDenied    = errors.New("missing permissions to post the live message")
	ErrPersistenceFailure  = errors.New("could not persist monitor data")
)
