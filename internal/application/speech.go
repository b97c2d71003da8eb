package application

import "context"

// Speaker vocalizes text, blocking until it has been fully spoken. The
// session loop logs a speak failure and moves on; speaking never fails a
// cycle. There is no cancellation: once started, a Speak call runs to
// completion.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Close() error
}
