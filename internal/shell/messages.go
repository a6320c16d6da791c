package shell

import "github.com/sadopc/lifeos/internal/checkin"

// DecisionMsg delivers a gating decision directly to the controller.
type DecisionMsg struct {
	Decision checkin.Decision
}

// ReadyMsg is the first-paint signal of a freshly constructed window.
type ReadyMsg struct{}

type TrayShowMsg struct{}
type TrayQuitMsg struct{}

// WindowClosedMsg is the "all windows closed" event.
type WindowClosedMsg struct{}

// ActivateMsg relaunches the window while none exists.
type ActivateMsg struct{}

// TimeoutMsg fires when the decision timeout of generation Gen expires.
type TimeoutMsg struct {
	Gen int
}

// PolicyMsg switches the timeout policy at runtime.
type PolicyMsg struct {
	ForceShow bool
}

// RevealedMsg tells the UI that the window just became visible.
type RevealedMsg struct{}

// internal messages from the listener commands
type bridgeMsg struct {
	decision checkin.Decision
}

type bridgeClosedMsg struct{}

type trayCommandMsg struct {
	cmd TrayCommand
}

type trayClosedMsg struct{}
