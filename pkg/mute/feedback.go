package mute

import "fmt"

// FeedbackKind tells feedback consumers how to present a published state:
// standing (Show) or transient (Flash). The orchestrator only decides the
// kind, presenting is left to the consumers.
type FeedbackKind uint8

const (
	FeedbackShow  = FeedbackKind(0)
	FeedbackFlash = FeedbackKind(1)
)

func (this FeedbackKind) String() string {
	switch this {
	case FeedbackShow:
		return "show"
	case FeedbackFlash:
		return "flash"
	default:
		return fmt.Sprintf("illegal-feedback-kind-%d", this)
	}
}
