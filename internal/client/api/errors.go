package api

import (
	"errors"
	"fmt"
)

// Client-side API errors
var (
	// ErrNetworkUnreachable indicates a transport-level failure: the
	// request never produced a server response. Distinguished from a
	// server-side rejection, which carries a status and message.
	ErrNetworkUnreachable = errors.New("network unreachable")

	// ErrReferenceNotFound indicates that the server could not resolve a
	// shop referenced by a check in the batch
	ErrReferenceNotFound = errors.New("referenced shop not found on server")
)

// ServerError представляет отказ сервера: batch отклонён целиком,
// сообщение сервера передаётся вызывающему дословно.
type ServerError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Unwrap позволяет errors.Is распознать отказ по ссылке на магазин
func (e *ServerError) Unwrap() error {
	if e.Code == "reference_not_found" {
		return ErrReferenceNotFound
	}
	return nil
}
