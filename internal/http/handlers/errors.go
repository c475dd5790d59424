package handlers

import "errors"

var (
	errInvalidLimit          = errors.New("limit must be a non-negative integer")
	errInvalidConversationID = errors.New("invalid conversation id")
	errInvalidRequestID      = errors.New("invalid request id")
	errPartialCoordinates    = errors.New("latitude and longitude must be provided together")
)
