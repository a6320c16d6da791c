// Package shell owns the window and tray visibility of the app.
package shell

// WindowState is the lifecycle of the main window.
type WindowState int

const (
	Initializing WindowState = iota
	Hidden
	Visible
	Closed // no window, process kept alive
	Destroyed
)

var windowStateNames = []string{"initializing", "hidden", "visible", "closed", "destroyed"}

func (s WindowState) String() string {
	if int(s) < len(windowStateNames) {
		return windowStateNames[s]
	}
	return "unknown"
}

// IsTerminal reports whether no further transition can happen.
func IsTerminal(s WindowState) bool {
	return s == Destroyed
}

func isAllowedTransition(from, to WindowState) bool {
	switch from {
	case Initializing:
		return to == Hidden || to == Visible || to == Closed || to == Destroyed
	case Hidden:
		return to == Visible || to == Closed || to == Destroyed
	case Visible:
		return to == Closed || to == Destroyed
	case Closed:
		return to == Initializing || to == Destroyed
	default:
		return false
	}
}

type TrayState int

const (
	TrayAbsent TrayState = iota
	TrayPresent
)

func (t TrayState) String() string {
	if t == TrayPresent {
		return "present"
	}
	return "absent"
}

// VisibilityState is the process-wide window and tray state.
type VisibilityState struct {
	Window WindowState
	Tray   TrayState
}
