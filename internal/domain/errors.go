package domain

import "errors"

var (
	// ErrNoSession is returned when a mutation is attempted with no
	// authenticated user.
	ErrNoSession = errors.New("no authenticated session")
	// ErrFolderNotFound indicates the referenced folder does not exist or is
	// not owned by the current user.
	ErrFolderNotFound = errors.New("folder not found")
	// ErrQuestionNotFound indicates the referenced question does not exist or
	// is not owned by the current user.
	ErrQuestionNotFound = errors.New("question not found")
)
