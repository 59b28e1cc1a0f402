package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrProfileNotFound    = fmt.Errorf("sync profile not found")
	ErrProfileInactive    = fmt.Errorf("sync profile is inactive")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrIssueNotFound      = fmt.Errorf("issue not found")
	ErrCardNotFound       = fmt.Errorf("card not found")

	// Sync errors
	ErrFetchFailed   = fmt.Errorf("bulk fetch failed")
	ErrHistoryRecord = fmt.Errorf("failed to record sync history")

	// Input validation errors
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrInvalidDirection = fmt.Errorf("invalid sync direction")
)
