package panel

import "errors"

var (
	// ErrEmptyPanelID is returned when a panel id is empty.
	ErrEmptyPanelID = errors.New("panel: empty panel id")
	// ErrNilPanel is returned when saving a nil panel.
	ErrNilPanel = errors.New("panel: nil panel")
	// ErrPanelNotFound is returned when a panel cannot be found.
	ErrPanelNotFound = errors.New("panel: not found")
	// ErrZeroTestTime is returned when a test record carries a zero timestamp.
	ErrZeroTestTime = errors.New("panel: zero test timestamp")
)
