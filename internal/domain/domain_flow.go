package domain

// FlowState 候选人面试页面流程状态
type FlowState string

const (
	FlowLoading      FlowState = "loading"
	FlowValidating   FlowState = "validating"
	FlowReady        FlowState = "ready"
	FlowInProgress   FlowState = "in_progress"
	FlowLeft         FlowState = "left"
	FlowExpired      FlowState = "expired"
	FlowInvalid      FlowState = "invalid"
	FlowError        FlowState = "error"
	FlowNoToken      FlowState = "no_token"
	FlowNotScheduled FlowState = "not_scheduled"
	FlowAlreadyUsed  FlowState = "already_used"
)

// IsFailure 失败状态
func (s FlowState) IsFailure() bool {
	switch s {
	case FlowExpired, FlowInvalid, FlowError, FlowNoToken, FlowNotScheduled, FlowAlreadyUsed:
		return true
	}
	return false
}

// FlowStateForReason maps a validation reason onto the page state shown to the candidate.
func FlowStateForReason(r ValidationReason) FlowState {
	switch r {
	case ReasonExpired:
		return FlowExpired
	case ReasonAlreadyUsed:
		return FlowAlreadyUsed
	case ReasonNotScheduled:
		return FlowNotScheduled
	default:
		return FlowInvalid
	}
}
