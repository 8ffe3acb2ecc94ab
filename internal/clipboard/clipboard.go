// Package clipboard abstracts the system clipboard so the vault can copy
// secrets and later take them back.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

//go:generate mockgen -source=clipboard.go -destination=../mock/clipboard_mock.go -package=mock

// ErrUnavailable is returned when the platform offers no clipboard
// (for example a headless Linux box without xclip/xsel/wl-clipboard).
var ErrUnavailable = errors.New("system clipboard is unavailable")

// Writer reads and writes clipboard text.
type Writer interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

// System is the [Writer] backed by the operating system clipboard.
type System struct{}

// NewSystem returns the system clipboard.
func NewSystem() *System {
	return &System{}
}

// WriteAll replaces the clipboard content with text.
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// ReadAll returns the current clipboard content.
func (System) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

// ClearIfOwned empties w when it still holds expected. A clipboard that
// has since been overwritten by another application is left alone. It
// reports whether the clipboard was cleared.
func ClearIfOwned(w Writer, expected string) (bool, error) {
	if expected == "" {
		return false, nil
	}

	current, err := w.ReadAll()
	if err != nil {
		return false, err
	}
	if current != expected {
		return false, nil
	}

	if err = w.WriteAll(""); err != nil {
		return false, err
	}
	return true, nil
}
