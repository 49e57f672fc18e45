package capture

import (
	"errors"
	"fmt"
	"strings"
)

// FailureClass buckets acquisition failures by what the user can do about them.
type FailureClass string

const (
	PermissionDenied FailureClass = "permission_denied" // user/OS declined access; retry after granting
	HardwareAbsent   FailureClass = "hardware_absent"   // no device of that kind exists
	HardwareBusy     FailureClass = "hardware_busy"     // device held by another process
	Unsupported      FailureClass = "unsupported"       // no capture tooling at all
)

// AcquisitionError is the classified result of a failed acquisition ladder.
type AcquisitionError struct {
	Class  FailureClass
	Kind   TrackKind
	Reason string
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("capture: %s (%s): %s", e.Class, e.Kind, e.Reason)
}

// Remediation is the user-facing text shown next to a failed detection.
func (e *AcquisitionError) Remediation() string {
	switch e.Class {
	case PermissionDenied:
		return "Access to the camera or microphone was denied. Grant permission and try again."
	case HardwareAbsent:
		return "No camera or microphone detected. Connect a device and try again."
	case HardwareBusy:
		return "The camera or microphone is in use by another application. Close it and try again."
	default:
		return "Media capture is not available on this system."
	}
}

// DeviceError is what a Backend returns when a single device fails to open.
// Kind tells the ladder which tier to retry; Cause carries the raw failure text
// classification is derived from.
type DeviceError struct {
	Kind  TrackKind
	Cause string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s device: %s", e.Kind, e.Cause)
}

var ErrEmptyCapture = errors.New("capture: recording produced no data")

// Classify maps a raw device failure string onto a FailureClass.
// The strings cover ffmpeg/v4l2/alsa/avfoundation wording; anything
// unrecognized is treated as Unsupported rather than guessed at.
func Classify(reason string) FailureClass {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "permission denied"),
		strings.Contains(r, "operation not permitted"),
		strings.Contains(r, "not authorized"),
		strings.Contains(r, "notallowed"):
		return PermissionDenied
	case strings.Contains(r, "no such file or directory"),
		strings.Contains(r, "no such device"),
		strings.Contains(r, "no such process"),
		strings.Contains(r, "cannot find"),
		strings.Contains(r, "notfound"),
		strings.Contains(r, "does not exist"):
		return HardwareAbsent
	case strings.Contains(r, "device or resource busy"),
		strings.Contains(r, "resource busy"),
		strings.Contains(r, "in use"),
		strings.Contains(r, "notreadable"):
		return HardwareBusy
	case strings.Contains(r, "executable file not found"),
		strings.Contains(r, "unknown input format"):
		return Unsupported
	default:
		return Unsupported
	}
}
