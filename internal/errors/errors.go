package errors

import "errors"

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")
var ErrNotFound = errors.New("resource not found")
var ErrScheduleExpired = errors.New("schedule has already started")
var ErrNotSelectable = errors.New("ticket type is not selectable")
var ErrDuplicateSelection = errors.New("schedule selected more than once")
var ErrFullScheduleClosed = errors.New("full-schedule purchase window has closed")
var ErrNotPending = errors.New("purchase is not pending")
