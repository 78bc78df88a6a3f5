package progress

import "errors"

var (
	// ErrUnknownItem is returned when a review references an item that is
	// not in the catalog.
	ErrUnknownItem = errors.New("unknown item")

	// ErrUnknownLearner is returned when a review references an unknown learner.
	ErrUnknownLearner = errors.New("unknown learner")

	// ErrVersionConflict is returned when the stored state changed between
	// load and save. The review is not applied and can be retried by the caller.
	ErrVersionConflict = errors.New("progress state version conflict")

	// ErrInvalidReview is returned for malformed review requests other than
	// an invalid quality.
	ErrInvalidReview = errors.New("invalid review")
)
