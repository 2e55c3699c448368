package expreplay

import "errors"

// BufferError implements errors unique to a replay buffer.
type BufferError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *BufferError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

var errEmptyBuffer = errors.New("buffer empty")

var errBadBatchSize = errors.New("batch size must be positive")

// IsEmptyBuffer returns whether or not an error reports that a replay
// buffer is empty.
func IsEmptyBuffer(err error) bool {
	if bufferErr, ok := err.(*BufferError); ok {
		err = bufferErr.Err
	}
	return errors.Is(err, errEmptyBuffer)
}
