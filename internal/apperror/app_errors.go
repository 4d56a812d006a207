package apperror

import "errors"

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownCommand = errors.New("unknown command")
)
