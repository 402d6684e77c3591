package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// # Error Codes Reference
//
// Fetch errors:
//
//	FETCH001 - A table could not be downloaded (transport failure, unknown
//	           locator scheme, missing file)
//	FETCH002 - The table source answered with a non-success status
//
// CSV errors:
//
//	CSV001 - A table has no header row
//	CSV002 - A table is not valid CSV (no consistent delimiter, ragged rows)
//
// Table errors:
//
//	TYPE001  - A column holds both integers and dates
//	SHAPE001 - A row does not have one cell per field
//	SHAPE002 - Two columns normalize to the same field name
//
// Merge and request errors:
//
//	MRG001 - The merge names no tables, too many tables, or one table twice
//	REQ001 - The request could not be read
//	REQ002 - A table or request body exceeds the size limit
//	REQ003 - The request was cancelled
//	REQ004 - The request timed out
//	RATE001 - Too many merges or requests at once
//
//	ERR000 - Anything else; check the logs for the technical error
//
// Typed errors are matched first with errors.Is and errors.As, so wrapping
// keeps the mapping intact. Errors from outside the module are then matched
// by message substring, case-insensitively. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvunion/internal/csvread"
	"github.com/JonMunkholm/csvunion/internal/source"
)

// ErrInvalidRequest marks a request that could not be decoded or validated.
var ErrInvalidRequest = errors.New("invalid request")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgFetchFailed = UserMessage{
		Message: "A table could not be downloaded",
		Action:  "Check that the locator is correct and reachable, then try again",
		Code:    "FETCH001",
	}
	msgFetchStatus = UserMessage{
		Message: "The table source rejected the request",
		Action:  "Check the locator and your access to it",
		Code:    "FETCH002",
	}
	msgEmptyTable = UserMessage{
		Message: "A table is empty",
		Action:  "Provide a CSV file that starts with a header row",
		Code:    "CSV001",
	}
	msgMalformed = UserMessage{
		Message: "A table is not valid CSV",
		Action:  "Use one delimiter (comma, semicolon, tab or pipe) and the same number of columns on every row",
		Code:    "CSV002",
	}
	msgTypeConflict = UserMessage{
		Message: "A column mixes numbers and dates",
		Action:  "Make every value in that column the same kind",
		Code:    "TYPE001",
	}
	msgShape = UserMessage{
		Message: "A row does not match the header",
		Action:  "Make sure every row has one value per column",
		Code:    "SHAPE001",
	}
	msgDuplicateField = UserMessage{
		Message: "Two columns have the same name",
		Action:  "Rename one of the duplicate columns",
		Code:    "SHAPE002",
	}
	msgBadMerge = UserMessage{
		Message: "The merge request is invalid",
		Action:  "Name at least one table and give every table a unique name",
		Code:    "MRG001",
	}
	msgBadRequest = UserMessage{
		Message: "The request could not be read",
		Action:  "Check the request format and try again",
		Code:    "REQ001",
	}
	msgTooLarge = UserMessage{
		Message: "A table is too large",
		Action:  "Split the file into smaller parts",
		Code:    "REQ002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ003",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try fewer or smaller tables, or try again later",
		Code:    "REQ004",
	}
	msgBusy = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

// errorMatcher pairs a predicate over an error chain with its message.
type errorMatcher struct {
	match func(error) bool
	msg   UserMessage
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func as[T error]() func(error) bool {
	return func(err error) bool {
		var target T
		return errors.As(err, &target)
	}
}

// errorMatchers is checked in order. Sentinels come before the error types
// that may wrap them.
var errorMatchers = []errorMatcher{
	{is(context.Canceled), msgCancelled},
	{is(context.DeadlineExceeded), msgTimeout},
	{is(source.ErrTooLarge), msgTooLarge},
	{is(ErrTooManyMerges), msgBusy},
	{is(ErrInvalidRequest), msgBadRequest},
	{is(csvread.ErrEmpty), msgEmptyTable},
	{as[*csvread.MalformedTableError](), msgMalformed},
	{func(err error) bool {
		var fe *source.FetchError
		return errors.As(err, &fe) && fe.StatusCode != 0
	}, msgFetchStatus},
	{as[*source.FetchError](), msgFetchFailed},
	{as[*TypeConflictError](), msgTypeConflict},
	{as[*DuplicateFieldError](), msgDuplicateField},
	{as[*ShapeMismatchError](), msgShape},
	{is(ErrNoTables), msgBadMerge},
	{is(ErrTooManyTables), msgBadMerge},
	{is(ErrNoRows), msgBadMerge},
	{as[*DuplicateTableError](), msgBadMerge},
}

// errorPattern maps a message substring to a user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns covers errors from the standard library and dependencies
// that carry no type to match on.
var errorPatterns = []errorPattern{
	{"request body too large", msgTooLarge},
	{"rate limit", msgBusy},
	{"connection refused", msgFetchFailed},
	{"no such host", msgFetchFailed},
	{"multipart", msgBadRequest},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
//
//	_, err := svc.Merge(ctx, specs)
//	msg := MapError(err)
//	// msg.Code == "TYPE001" for a column mixing integers and dates
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, m := range errorMatchers {
		if m.match(err) {
			return m.msg
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError keeps the technical error for logging next to the message shown
// to users.
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
