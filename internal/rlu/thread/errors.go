package thread

import (
	"errors"

	"github.com/kolkov/rlu/internal/rlu/writelog"
)

var (
	// ErrConflict reports that another thread already holds an object the
	// episode tried to lock. The episode has been aborted; restart it.
	ErrConflict = errors.New("thread: lock conflict")

	// ErrLogFull reports that the episode locked more than the write log
	// can hold. The episode has been aborted.
	ErrLogFull = writelog.ErrLogFull

	// ErrMisuse is wrapped by the panics raised on bracket violations.
	ErrMisuse = errors.New("thread: misuse")
)
