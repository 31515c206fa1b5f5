package repository

import "errors"

var (
	ErrCaptchaRequired    = errors.New("captcha required but no solver provided")
	ErrLoginFailed        = errors.New("portal login failed")
	ErrNavigationFailed   = errors.New("portal navigation failed")
	ErrFormNotFound       = errors.New("could not submit attendance form")
	ErrNoAttendanceData   = errors.New("no attendance data found")
	ErrPortalTimeout      = errors.New("portal session timed out")
	ErrManualStepRequired = errors.New("manual step required")
	ErrNotFound           = errors.New("not found")
	ErrFetchInProgress    = errors.New("a fetch for this student is already running")
)
