package vosk

import "errors"

// ErrNoInputDevice reports the unrecoverable startup precondition: the host
// has no usable microphone. The caller is expected to tell the user and exit
// rather than retry.
var ErrNoInputDevice = errors.New("no audio input device available")
