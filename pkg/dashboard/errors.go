package dashboard

import (
	"errors"
	"fmt"

	"gitlab.com/tinyland/lab/tileboard/pkg/api"
)

// ErrorKind classifies a failed collection operation.
type ErrorKind int

const (
	FetchError ErrorKind = iota + 1
	CreateError
	UpdateError
	DeleteError
	LayoutError
)

// LayoutSaveFailed is the banner shown when a layout persist fails.
const LayoutSaveFailed = "Failed to save layout changes. Please try again."

// Sentinels matched by errors.Is against *Error.
var (
	ErrFetch  = errors.New("dashboard: fetch widgets")
	ErrCreate = errors.New("dashboard: create widget")
	ErrUpdate = errors.New("dashboard: update widget")
	ErrDelete = errors.New("dashboard: delete widget")
	ErrLayout = errors.New("dashboard: save layout")

	// ErrNotFound reports an id the collection does not hold.
	ErrNotFound = errors.New("dashboard: widget not found")
	// ErrUnknownKind reports an unsupported widget type.
	ErrUnknownKind = errors.New("dashboard: unknown widget type")
)

func (k ErrorKind) String() string {
	switch k {
	case FetchError:
		return "FetchError"
	case CreateError:
		return "CreateError"
	case UpdateError:
		return "UpdateError"
	case DeleteError:
		return "DeleteError"
	case LayoutError:
		return "LayoutError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case FetchError:
		return ErrFetch
	case CreateError:
		return ErrCreate
	case UpdateError:
		return ErrUpdate
	case DeleteError:
		return ErrDelete
	case LayoutError:
		return ErrLayout
	}
	return nil
}

// Fallback is the user-facing message when the server sent none.
func (k ErrorKind) Fallback() string {
	switch k {
	case FetchError:
		return "Failed to fetch widgets"
	case CreateError:
		return "Failed to add widget"
	case UpdateError:
		return "Failed to update widget config"
	case DeleteError:
		return "Failed to delete widget"
	case LayoutError:
		return LayoutSaveFailed
	}
	return "Request failed"
}

// Error is a failed collection operation. ID is empty for fetches.
type Error struct {
	Kind ErrorKind
	ID   string
	Err  error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Message is what the user sees: the server's msg if present, else the
// kind's fallback.
func (e *Error) Message() string {
	return api.Message(e.Err, e.Kind.Fallback())
}

// Message returns the user-facing text for any error a Collection returns.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
