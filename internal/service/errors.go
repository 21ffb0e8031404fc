package service

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidArgument = errors.New("invalid argument")

	ErrNoToken        = errors.New("github token is not set")
	ErrNoGistID       = errors.New("gist id is not set")
	ErrGistGone       = errors.New("stored gist no longer exists, clear the saved gist id")
	ErrSyncInProgress = errors.New("sync already in progress")

	ErrReportUploadUnavailable = errors.New("report upload is not configured")
)
