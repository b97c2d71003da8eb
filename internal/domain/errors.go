package domain

import "fmt"

type FailureKind string

const (
	FailureQuotaExceeded      FailureKind = "quota_exceeded"
	FailureNetworkUnreachable FailureKind = "network_unreachable"
	FailureOther              FailureKind = "other"
)

// AssistantError classifies a failed assistant request. The session loop
// matches on Kind to pick the sentence it speaks to the user.
type AssistantError struct {
	Kind    FailureKind
	Message string
}

func (e *AssistantError) Error() string {
	return fmt.Sprintf("assistant request failed (%s): %s", e.Kind, e.Message)
}

func QuotaExceeded(message string) *AssistantError {
	return &AssistantError{Kind: FailureQuotaExceeded, Message: message}
}

func NetworkUnreachable(message string) *AssistantError {
	return &AssistantError{Kind: FailureNetworkUnreachable, Message: message}
}

func OtherFailure(message string) *AssistantError {
	return &AssistantError{Kind: FailureOther, Message: message}
}
