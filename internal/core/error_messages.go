package core

// error_messages.go maps technical errors to coded, user-facing messages.
//
// Known sentinel errors are matched first with errors.Is so wrapping never
// hides them. Anything else falls through to case-insensitive substring
// patterns, and finally to ERR000. Backend rejections keep the backend's own
// message since it is usually the most precise explanation available.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/timetable-admin/internal/api"
	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
	"github.com/JonMunkholm/timetable-admin/internal/store"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{csvimport.ErrFileTooLarge, UserMessage{"File exceeds the maximum upload size", "Split the file into smaller files", "FILE001"}},
	{csvimport.ErrUnterminatedQuote, UserMessage{"File is not a valid CSV", "Check that every quoted value has a closing quote", "FILE002"}},
	{csvimport.ErrUnsupportedEncoding, UserMessage{"File encoding is not supported", "Save the file as UTF-8", "FILE003"}},
	{csvimport.ErrNoFile, UserMessage{"No file was selected", "Choose a CSV or XLSX file to upload", "FILE004"}},
	{csvimport.ErrUnsupportedFile, UserMessage{"File type is not supported", "Upload a .csv or .xlsx file", "FILE006"}},
	{csvimport.ErrNoSheet, UserMessage{"Workbook sheet not found", "Check the sheet name or use the first sheet", "FILE007"}},

	{ErrInvalidNumber, UserMessage{"Invalid number format detected", "Use plain digits without units", "VAL001"}},
	{ErrSkipRow, UserMessage{"Required field is empty", "Fill in the required columns for every row", "VAL003"}},
	{ErrInvalidInput, UserMessage{"Some request fields are missing or invalid", "Check the form and try again", "VAL004"}},

	{ErrTooManyImports, UserMessage{"Too many imports in progress", "Please wait a moment and try again", "IMP001"}},
	{context.Canceled, UserMessage{"Request was cancelled", "Please try again", "IMP002"}},
	{context.DeadlineExceeded, UserMessage{"Request timed out", "Try a smaller file or try again later", "IMP003"}},

	{ErrUnknownPanel, UserMessage{"Unknown panel", "Check the panel name", "PNL001"}},
	{ErrForbidden, UserMessage{"This panel is not available for your role", "Sign in with an account that has access", "PNL002"}},

	{auth.ErrInvalidCredentials, UserMessage{"Email or password is not valid", "Enter a valid email address and a password", "AUTH001"}},
	{auth.ErrInvalidToken, UserMessage{"Your session has expired", "Sign in again", "AUTH002"}},
	{auth.ErrNoSession, UserMessage{"You are not signed in", "Sign in to continue", "AUTH002"}},

	{api.ErrNotFound, UserMessage{"Record not found on the timetable backend", "Refresh the list and try again", "BE003"}},

	{store.ErrNotFound, UserMessage{"Record not found", "Refresh the list and try again", "STO001"}},
	{store.ErrInvalidCollection, UserMessage{"Records cannot be stored for this panel", "Contact support", "STO002"}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched case-insensitively; the first match wins, so
// specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{"invalid number", UserMessage{"Invalid number format detected", "Use plain digits without units", "VAL001"}},
	{"invalid boolean", UserMessage{"Invalid yes/no value detected", "Use true/false or yes/no", "VAL002"}},
	{"required field", UserMessage{"Required field is empty", "Fill in the required columns for every row", "VAL003"}},
	{"invalid csv", UserMessage{"File is not a valid CSV", "Check that every quoted value has a closing quote", "FILE002"}},
	{"zip: not a valid zip file", UserMessage{"File is not a valid workbook", "Save the file as .xlsx or export it as CSV", "FILE005"}},
	{"connection refused", UserMessage{"Unable to reach the server", "Please try again in a few moments", "BE001"}},
	{"no such host", UserMessage{"Unable to reach the server", "Check the backend address", "BE001"}},
	{"failed to connect", UserMessage{"Unable to connect to the database", "Please try again in a few moments", "STO003"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status != 404 {
		return UserMessage{
			Message: apiErr.Message,
			Action:  "Correct the request and try again",
			Code:    "BE002",
		}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return UserMessage{
			Message: "Some values are not valid",
			Action:  "Check the highlighted fields",
			Code:    "VAL002",
		}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err; nil stays nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
