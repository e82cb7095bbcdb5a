package card

import "errors"

var (
	// ErrNotFound indicates that no card exists for the requested id.
	ErrNotFound = errors.New("card not found")
	// ErrInvalidDifficulty indicates a difficulty outside easy/medium/hard.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrInvalidVoteType indicates a vote type that is neither an upvote nor a
	// downvote under any accepted spelling.
	ErrInvalidVoteType = errors.New("invalid vote type")
)
