package errdefs

import (
	"errors"
	"fmt"
)

type ErrorType int

const (
	ErrTypeUnsupportedManager ErrorType = iota
	ErrTypeManifestNotFound
	ErrTypeCommandFailed
	ErrTypeParseFailure
	ErrTypeGeneric
)

type CustomError struct {
	Type    ErrorType
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

func NewCustomError(errType ErrorType, message string) error {
	return &CustomError{
		Type:    errType,
		Message: message,
	}
}

// IsType reports whether err is a CustomError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Type == errType
	}
	return false
}

// CommandFailedError carries the exit code of a failed subprocess.
type CommandFailedError struct {
	Command  string
	ExitCode int
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Command)
}

func NewCommandFailed(command string, exitCode int) error {
	return &CommandFailedError{Command: command, ExitCode: exitCode}
}

// UnsupportedManagerError is returned when a package manager name matches
// no known profile.
type UnsupportedManagerError struct {
	Name string
}

func (e *UnsupportedManagerError) Error() string {
	return "unsupported package manager: " + e.Name
}

var ErrManifestNotFound = NewCustomError(ErrTypeManifestNotFound, "package.json not found")
