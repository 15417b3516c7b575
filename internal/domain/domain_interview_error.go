package domain

import "time"

// InterviewErrorType 面试过程中的错误类型
type InterviewErrorType string

const (
	ErrTypeSessionExpired     InterviewErrorType = "SESSION_EXPIRED"
	ErrTypeSessionInvalid     InterviewErrorType = "SESSION_INVALID"
	ErrTypeSessionNotFound    InterviewErrorType = "SESSION_NOT_FOUND"
	ErrTypeNetworkOffline     InterviewErrorType = "NETWORK_OFFLINE"
	ErrTypeNetworkSlow        InterviewErrorType = "NETWORK_SLOW"
	ErrTypeConnectionLost     InterviewErrorType = "CONNECTION_LOST"
	ErrTypeMicrophoneDenied   InterviewErrorType = "MICROPHONE_DENIED"
	ErrTypeMicrophoneNotFound InterviewErrorType = "MICROPHONE_NOT_FOUND"
	ErrTypeMicrophoneBusy     InterviewErrorType = "MICROPHONE_BUSY"
	ErrTypeBrowserIncompat    InterviewErrorType = "BROWSER_INCOMPATIBLE"
	ErrTypeBrowserOutdated    InterviewErrorType = "BROWSER_OUTDATED"
	ErrTypeWebRTCUnsupported  InterviewErrorType = "WEBRTC_NOT_SUPPORTED"
	ErrTypeAIBotTimeout       InterviewErrorType = "AI_BOT_TIMEOUT"
	ErrTypeAIBotDisconnected  InterviewErrorType = "AI_BOT_DISCONNECTED"
	ErrTypeAIBotError         InterviewErrorType = "AI_BOT_ERROR"
	ErrTypeRoomFull           InterviewErrorType = "DAILY_ROOM_FULL"
	ErrTypeRoomNotFound       InterviewErrorType = "DAILY_ROOM_NOT_FOUND"
	ErrTypeRoomTokenInvalid   InterviewErrorType = "DAILY_TOKEN_INVALID"
	ErrTypeUnknown            InterviewErrorType = "UNKNOWN_ERROR"
)

// InterviewError 面试错误记录
type InterviewError struct {
	Type        InterviewErrorType `json:"type"`
	Message     string             `json:"message"`
	Details     string             `json:"details,omitempty"`
	Recoverable bool               `json:"recoverable"`
	Reportable  bool               `json:"reportable"`
	Timestamp   time.Time          `json:"timestamp"`
	SessionID   string             `json:"sessionId,omitempty"`
}

// ErrorMeta 错误目录中的静态元数据
type ErrorMeta struct {
	Message     string
	Details     string
	Recoverable bool
	Reportable  bool
}

var errorCatalog = map[InterviewErrorType]ErrorMeta{
	ErrTypeSessionExpired: {
		Message: "Your interview session has expired",
		Details: "The interview link is no longer valid. Please contact HR for a new link.",
	},
	ErrTypeSessionInvalid: {
		Message: "Invalid interview session",
		Details: "The interview link appears to be invalid. Please check your email for the correct link.",
	},
	ErrTypeSessionNotFound: {
		Message:    "Interview session not found",
		Details:    "We could not find this interview session. It may have been cancelled or rescheduled.",
		Reportable: true,
	},
	ErrTypeNetworkOffline: {
		Message:     "No internet connection",
		Details:     "Please check your internet connection and try again.",
		Recoverable: true,
	},
	ErrTypeNetworkSlow: {
		Message:     "Poor network connection",
		Details:     "Your internet connection is slow. This may affect audio quality.",
		Recoverable: true,
	},
	ErrTypeConnectionLost: {
		Message:     "Connection lost",
		Details:     "The connection to the interview room was lost. Attempting to reconnect...",
		Recoverable: true,
		Reportable:  true,
	},
	ErrTypeMicrophoneDenied: {
		Message:     "Microphone access denied",
		Details:     "Please allow microphone access to participate in the interview. Check your browser settings.",
		Recoverable: true,
	},
	ErrTypeMicrophoneNotFound: {
		Message:     "No microphone detected",
		Details:     "Please connect a microphone to your device and refresh the page.",
		Recoverable: true,
	},
	ErrTypeMicrophoneBusy: {
		Message:     "Microphone is in use",
		Details:     "Your microphone is being used by another application. Please close other apps and try again.",
		Recoverable: true,
	},
	ErrTypeBrowserIncompat: {
		Message: "Browser not supported",
		Details: "Please use Chrome, Firefox, Safari, or Edge for the best experience.",
	},
	ErrTypeBrowserOutdated: {
		Message: "Browser needs update",
		Details: "Your browser version is outdated. Please update to the latest version.",
	},
	ErrTypeWebRTCUnsupported: {
		Message: "WebRTC not supported",
		Details: "Your browser does not support WebRTC. Please use a modern browser.",
	},
	ErrTypeAIBotTimeout: {
		Message:     "AI interviewer is taking longer than expected",
		Details:     "The AI interviewer is taking time to join. Please wait a moment.",
		Recoverable: true,
		Reportable:  true,
	},
	ErrTypeAIBotDisconnected: {
		Message:     "AI interviewer disconnected",
		Details:     "The AI interviewer has disconnected. We are attempting to reconnect.",
		Recoverable: true,
		Reportable:  true,
	},
	ErrTypeAIBotError: {
		Message:     "AI interviewer error",
		Details:     "There was an error with the AI interviewer. Please try again or contact support.",
		Recoverable: true,
		Reportable:  true,
	},
	ErrTypeRoomFull: {
		Message:    "Interview room is full",
		Details:    "The interview room has reached its capacity. Please contact support.",
		Reportable: true,
	},
	ErrTypeRoomNotFound: {
		Message:    "Interview room not found",
		Details:    "The interview room could not be found. It may have been closed.",
		Reportable: true,
	},
	ErrTypeRoomTokenInvalid: {
		Message:    "Authentication failed",
		Details:    "Your authentication token is invalid. Please use the link from your email.",
		Reportable: true,
	},
	ErrTypeUnknown: {
		Message:     "An unexpected error occurred",
		Details:     "Something went wrong. Please try again or contact support if the problem persists.",
		Recoverable: true,
		Reportable:  true,
	},
}

// LookupErrorMeta returns the catalog entry for t; unknown types fall back to UNKNOWN_ERROR.
func LookupErrorMeta(t InterviewErrorType) (ErrorMeta, bool) {
	meta, ok := errorCatalog[t]
	if !ok {
		return errorCatalog[ErrTypeUnknown], false
	}
	return meta, true
}

// ErrorTypes 返回目录中的全部错误类型
func ErrorTypes() []InterviewErrorType {
	return []InterviewErrorType{
		ErrTypeSessionExpired, ErrTypeSessionInvalid, ErrTypeSessionNotFound,
		ErrTypeNetworkOffline, ErrTypeNetworkSlow, ErrTypeConnectionLost,
		ErrTypeMicrophoneDenied, ErrTypeMicrophoneNotFound, ErrTypeMicrophoneBusy,
		ErrTypeBrowserIncompat, ErrTypeBrowserOutdated, ErrTypeWebRTCUnsupported,
		ErrTypeAIBotTimeout, ErrTypeAIBotDisconnected, ErrTypeAIBotError,
		ErrTypeRoomFull, ErrTypeRoomNotFound, ErrTypeRoomTokenInvalid,
		ErrTypeUnknown,
	}
}

// IssueType 技术问题类型
type IssueType string

const (
	IssueAudio      IssueType = "audio"
	IssueConnection IssueType = "connection"
	IssueBrowser    IssueType = "browser"
	IssueOther      IssueType = "other"
)

// TechnicalIssue 候选人上报的技术问题工单
type TechnicalIssue struct {
	TicketID    string    `json:"ticketId"`
	SessionID   string    `json:"sessionId"`
	IssueType   IssueType `json:"issueType"`
	Description string    `json:"description"`
	BrowserInfo string    `json:"browserInfo"`
	CreatedAt   time.Time `json:"createdAt"`
}
