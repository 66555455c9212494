package common

import "fmt"

var (
	ErrCookieFieldMissing = fmt.Errorf("cookie field missing")
	ErrCookieFieldInvalid = fmt.Errorf("cookie field invalid")
	ErrUnknownStatus      = fmt.Errorf("unknown request status")
	ErrUnknownToken       = fmt.Errorf("unknown media token")

	ErrFileNotFound          = fmt.Errorf("file not found")
	ErrFileSelectionRequired = fmt.Errorf("file selection required")
	ErrEmptyURL              = fmt.Errorf("request url is empty")

	ErrPluginNotFound                   = fmt.Errorf("plugin not found")
	ErrTooManySteps                     = fmt.Errorf("too many resolution steps")
	ErrIndexingProcessHasAlreadyStarted = fmt.Errorf("indexing process has already started")
)
