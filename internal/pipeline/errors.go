package pipeline

import "errors"

var (
	// ErrEmptyFilename is returned by Submit when no filename was provided.
	ErrEmptyFilename = errors.New("filename is empty")
	// ErrEmptyFile is returned by Submit when the uploaded content is empty.
	ErrEmptyFile = errors.New("file content is empty")
)
