package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeIO indicates the transport failed to open, purge, read or write
	ErrTypeIO ErrorType = iota
	// ErrTypeTimeout indicates no acknowledgement or answer arrived in time
	ErrTypeTimeout
	// ErrTypeCommunication indicates a NACK or an unexpected acknowledgement byte
	ErrTypeCommunication
	// ErrTypeBoardNotFound indicates the firmware identity did not match
	ErrTypeBoardNotFound
	// ErrTypeVersionMismatch indicates an unsupported firmware version
	ErrTypeVersionMismatch
	// ErrTypeSequenceTooLong indicates steps*frames would exceed MaxSequenceLength
	ErrTypeSequenceTooLong
	// ErrTypeSequenceLengthMismatch indicates a modulation table of the wrong length
	ErrTypeSequenceLengthMismatch
	// ErrTypeInvalidValue indicates an out-of-range or malformed value
	ErrTypeInvalidValue
	// ErrTypeTriggerNotInternal indicates a manual acquisition without the internal trigger
	ErrTypeTriggerNotInternal
	// ErrTypeParse indicates an answer line that could not be decoded
	ErrTypeParse
	// ErrTypeNotConnected indicates no transport is attached
	ErrTypeNotConnected
	// ErrTypeSequenceEmpty indicates modulation was enabled without a sequence
	ErrTypeSequenceEmpty
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeIO:
		return "I/O Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeCommunication:
		return "Communication Error"
	case ErrTypeBoardNotFound:
		return "Board Not Found"
	case ErrTypeVersionMismatch:
		return "Version Mismatch"
	case ErrTypeSequenceTooLong:
		return "Sequence Too Long"
	case ErrTypeSequenceLengthMismatch:
		return "Sequence Length Mismatch"
	case ErrTypeInvalidValue:
		return "Invalid Value"
	case ErrTypeTriggerNotInternal:
		return "Trigger Not Internal"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeNotConnected:
		return "Not Connected"
	case ErrTypeSequenceEmpty:
		return "Sequence Empty"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ControllerError is the single error type returned by the protocol layers
type ControllerError struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Header  byte      // Command header involved (0 if none)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface
func (e *ControllerError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Header != 0 {
		fmt.Fprintf(&b, " [%s]", HeaderName(e.Header))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *ControllerError) Unwrap() error {
	return e.Err
}

// NewIOError wraps a transport failure
func NewIOError(message string, err error) *ControllerError {
	return &ControllerError{Type: ErrTypeIO, Message: message, Err: err}
}

// NewTimeoutError reports a missing acknowledgement or answer
func NewTimeoutError(header byte, message string) *ControllerError {
	return &ControllerError{Type: ErrTypeTimeout, Message: message, Header: header}
}

// NewCommunicationError reports a NACK or an unexpected acknowledgement byte
func NewCommunicationError(header byte, got byte) *ControllerError {
	msg := fmt.Sprintf("unexpected acknowledgement byte 0x%02x", got)
	if got == NACK {
		msg = "controller answered NACK"
	}
	return &ControllerError{Type: ErrTypeCommunication, Message: msg, Header: header}
}

// NewBoardNotFoundError reports a firmware identity mismatch
func NewBoardNotFoundError(identity string) *ControllerError {
	return &ControllerError{
		Type:    ErrTypeBoardNotFound,
		Message: fmt.Sprintf("firmware identity %q, expected %q", identity, FirmwareID),
		Header:  HeaderFirmware,
	}
}

// NewVersionMismatchError reports an unsupported firmware version
func NewVersionMismatchError(version int) *ControllerError {
	return &ControllerError{
		Type:    ErrTypeVersionMismatch,
		Message: fmt.Sprintf("firmware version %d not supported, use version %d to %d", version, MinVersion, MaxVersion),
		Header:  HeaderVersion,
	}
}

// NewSequenceTooLongError reports a steps*frames product above MaxSequenceLength
func NewSequenceTooLongError(steps, frames int) *ControllerError {
	return &ControllerError{
		Type:    ErrTypeSequenceTooLong,
		Message: fmt.Sprintf("%d steps x %d frames = %d exceeds %d", steps, frames, steps*frames, MaxSequenceLength),
	}
}

// NewSequenceLengthMismatchError reports a modulation table of the wrong size
func NewSequenceLengthMismatchError(header byte, got, want int) *ControllerError {
	return &ControllerError{
		Type:    ErrTypeSequenceLengthMismatch,
		Message: fmt.Sprintf("modulation has %d steps, sequence length is NSteps*NFrames = %d", got, want),
		Header:  header,
	}
}

// NewInvalidValueError reports an out-of-range or malformed value
func NewInvalidValueError(message string) *ControllerError {
	return &ControllerError{Type: ErrTypeInvalidValue, Message: message}
}

// NewTriggerNotInternalError reports a manual acquisition on an external trigger
func NewTriggerNotInternalError(trigger string) *ControllerError {
	return &ControllerError{
		Type:    ErrTypeTriggerNotInternal,
		Message: fmt.Sprintf("manual acquisition requires the internal trigger (selected: %s)", trigger),
		Header:  HeaderAcquire,
	}
}

// NewParseError reports an answer that could not be decoded
func NewParseError(message string, err error) *ControllerError {
	return &ControllerError{Type: ErrTypeParse, Message: message, Err: err}
}

// NewNotConnectedError reports an operation without an attached transport
func NewNotConnectedError() *ControllerError {
	return &ControllerError{Type: ErrTypeNotConnected, Message: "controller is not connected"}
}

// NewSequenceEmptyError reports modulation enabled without a usable sequence
func NewSequenceEmptyError(header byte) *ControllerError {
	return &ControllerError{
		Type:    ErrTypeSequenceEmpty,
		Message: fmt.Sprintf("NSteps*NFrames must be between 1 and %d and the step time must be > 0", MaxSequenceLength),
		Header:  header,
	}
}

// TypeOf returns the ErrorType of err and whether err carries one.
func TypeOf(err error) (ErrorType, bool) {
	var ce *ControllerError
	if errors.As(err, &ce) {
		return ce.Type, true
	}
	return 0, false
}

func isType(err error, t ErrorType) bool {
	got, ok := TypeOf(err)
	return ok && got == t
}

// IsIOError checks if an error is a transport error
func IsIOError(err error) bool { return isType(err, ErrTypeIO) }

// IsTimeout checks if an error is an acknowledgement or answer timeout
func IsTimeout(err error) bool { return isType(err, ErrTypeTimeout) }

// IsCommunicationError checks if an error is a NACK or unexpected byte
func IsCommunicationError(err error) bool { return isType(err, ErrTypeCommunication) }

// IsBoardNotFound checks if an error is a firmware identity mismatch
func IsBoardNotFound(err error) bool { return isType(err, ErrTypeBoardNotFound) }

// IsVersionMismatch checks if an error is an unsupported firmware version
func IsVersionMismatch(err error) bool { return isType(err, ErrTypeVersionMismatch) }

// IsSequenceTooLong checks if an error is a steps*frames overflow
func IsSequenceTooLong(err error) bool { return isType(err, ErrTypeSequenceTooLong) }

// IsSequenceLengthMismatch checks if an error is a table length mismatch
func IsSequenceLengthMismatch(err error) bool { return isType(err, ErrTypeSequenceLengthMismatch) }

// IsInvalidValue checks if an error is an invalid value
func IsInvalidValue(err error) bool { return isType(err, ErrTypeInvalidValue) }

// IsTriggerNotInternal checks if an error is a rejected manual acquisition
func IsTriggerNotInternal(err error) bool { return isType(err, ErrTypeTriggerNotInternal) }

// IsParseError checks if an error is an answer parse error
func IsParseError(err error) bool { return isType(err, ErrTypeParse) }

// IsNotConnected checks if an error is a missing transport
func IsNotConnected(err error) bool { return isType(err, ErrTypeNotConnected) }

// IsSequenceEmpty checks if an error is modulation enabled without a sequence
func IsSequenceEmpty(err error) bool { return isType(err, ErrTypeSequenceEmpty) }

// IsLinkError reports whether err came from the serial link rather than from
// local validation. Link errors leave the controller state uncertain.
func IsLinkError(err error) bool {
	t, ok := TypeOf(err)
	if !ok {
		return false
	}
	return t == ErrTypeIO || t == ErrTypeTimeout || t == ErrTypeCommunication || t == ErrTypeParse
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) []string {
	t, ok := TypeOf(err)
	if !ok {
		return nil
	}

	switch t {
	case ErrTypeIO:
		return []string{
			"Check the serial port name (arductl ports lists candidates)",
			"Make sure no other program holds the port open",
			"On Linux, check you are in the dialout group",
		}
	case ErrTypeTimeout:
		return []string{
			"Check that the controller is powered and the USB cable is seated",
			"The board ignores the link for ~2s after the port opens; keep the settle delay",
			fmt.Sprintf("Confirm the port runs at %d baud", BaudRate),
		}
	case ErrTypeCommunication:
		return []string{
			"The controller rejected the frame; the firmware may be busy or out of sync",
			"Run 'arductl reset' and retry the command",
		}
	case ErrTypeBoardNotFound:
		return []string{
			"The device on this port is not running the " + FirmwareID + " firmware",
			"Flash the ArduControl sketch or pick another port",
		}
	case ErrTypeVersionMismatch:
		return []string{
			fmt.Sprintf("Flash firmware version %d to %d", MinVersion, MaxVersion),
		}
	case ErrTypeSequenceTooLong, ErrTypeSequenceEmpty:
		return []string{
			fmt.Sprintf("Keep NSteps x NFrames between 1 and %d", MaxSequenceLength),
			"Set a frame period > 0 when exposure is 0 or loop frame is on",
		}
	case ErrTypeSequenceLengthMismatch:
		return []string{
			"A modulation needs exactly NSteps x NFrames values",
			"Set NSteps and NFrames to 0 to clear the sequence before loading a new shape",
		}
	case ErrTypeTriggerNotInternal:
		return []string{
			"Select the Internal trigger: arductl set trigger Label Internal",
		}
	default:
		return nil
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var ce *ControllerError
	if !errors.As(err, &ce) {
		return err.Error()
	}

	switch ce.Type {
	case ErrTypeIO:
		return "Serial port error"
	case ErrTypeTimeout:
		return "Controller not responding (timeout)"
	case ErrTypeCommunication:
		return "Controller rejected the command"
	case ErrTypeBoardNotFound:
		return "No ArduControl board on this port"
	case ErrTypeVersionMismatch:
		return "Unsupported firmware version"
	case ErrTypeNotConnected:
		return "Controller not connected"
	default:
		return ce.Message
	}
}
