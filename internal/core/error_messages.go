package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference. Users quote the code; support staff look it
// up here and check the logs for the technical error.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large              Patterns: "file too large"
//	FILE002 - Path is a folder            Patterns: "is a directory"
//	FILE003 - No file selected            Patterns: "no file provided"
//	FILE004 - No header line              Patterns: "no header line"
//	FILE005 - Unsupported file type       Patterns: "unsupported file type"
//
// # Load Errors (LOAD001-LOAD099)
//
//	LOAD001 - System busy                 Patterns: "too many concurrent loads"
//	LOAD002 - Request cancelled           Patterns: "context canceled"
//	LOAD003 - Request timeout             Patterns: "context deadline exceeded"
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Not found                    Patterns: "path not found"
//	STO002 - Access denied                Patterns: "access denied"
//	STO003 - Already exists               Patterns: "already exists"
//	STO004 - Invalid path                 Patterns: "invalid path"
//
// # Filter Errors (FLT001-FLT099)
//
//	FLT002 - Bad date bound               Patterns: "bad date bound"
//	FLT001 - Malformed filter             Patterns: "invalid filter"
//
// # Session and History (SES001, HIS001)
//
//	SES001 - View expired                 Patterns: "session not found"
//	HIS001 - History disabled             Patterns: "history unavailable"
//
// # Request Errors (RATE001, REQ001-REQ099)
//
//	RATE001 - Rate limited                Patterns: "rate limit"
//	REQ001 - Malformed request body       Patterns: "invalid request body"
//	REQ002 - Missing parameter            Patterns: "missing parameter"
//	REQ003 - Unknown export format        Patterns: "unsupported export format"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Session errors come first: "session not found" must not fall through
	// to the storage "not found" family.
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "This view has expired",
			Action:  "Reopen the file to start a new view",
			Code:    "SES001",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "is a directory",
		msg: UserMessage{
			Message: "The selected path is a folder",
			Action:  "Pick a file inside the folder instead",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no header line",
		msg: UserMessage{
			Message: "The file has no header line",
			Action:  "Make sure the first non-empty line lists the column names",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv, .tsv or .txt file",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Load Errors (LOAD001-LOAD003)
	// =========================================================================
	{
		pattern: "too many concurrent loads",
		msg: UserMessage{
			Message: "Too many files are being opened right now",
			Action:  "Please wait a moment and try again",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "LOAD002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "LOAD003",
		},
	},

	// =========================================================================
	// Storage Errors (STO001-STO004)
	// =========================================================================
	{
		pattern: "path not found",
		msg: UserMessage{
			Message: "The file or folder does not exist",
			Action:  "Refresh the file list and try again",
			Code:    "STO001",
		},
	},
	{
		pattern: "access denied",
		msg: UserMessage{
			Message: "That location is outside the data folder",
			Action:  "Use a path inside the data folder",
			Code:    "STO002",
		},
	},
	{
		pattern: "already exists",
		msg: UserMessage{
			Message: "A file or folder with that name already exists",
			Action:  "Choose a different name",
			Code:    "STO003",
		},
	},
	{
		pattern: "invalid path",
		msg: UserMessage{
			Message: "The path is not valid",
			Action:  "Use a relative path such as reports/sales.csv",
			Code:    "STO004",
		},
	},

	// =========================================================================
	// Filter Errors (FLT001-FLT002)
	// FLT002 is more specific and must precede FLT001.
	// =========================================================================
	{
		pattern: "bad date bound",
		msg: UserMessage{
			Message: "A date filter bound could not be read",
			Action:  "Use YYYY-MM-DD or a full ISO timestamp",
			Code:    "FLT002",
		},
	},
	{
		pattern: "invalid filter",
		msg: UserMessage{
			Message: "The filter settings could not be read",
			Action:  "Reset the filters and try again",
			Code:    "FLT001",
		},
	},

	// =========================================================================
	// History (HIS001)
	// =========================================================================
	{
		pattern: "history unavailable",
		msg: UserMessage{
			Message: "Load history is not enabled",
			Action:  "Set HISTORY_DRIVER to sqlite or postgres to record history",
			Code:    "HIS001",
		},
	},

	// =========================================================================
	// Request Errors (RATE001, REQ001-REQ002)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the request format and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "missing parameter",
		msg: UserMessage{
			Message: "A required value is missing",
			Action:  "Fill in all required fields",
			Code:    "REQ002",
		},
	},
	{
		pattern: "unsupported export format",
		msg: UserMessage{
			Message: "That export format is not available",
			Action:  "Export as csv or xlsx",
			Code:    "REQ003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback with code ERR000 is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("load a.csv: %w", ErrNoHeader))
//	// msg.Code == "FILE004"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
