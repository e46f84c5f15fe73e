package control

import "fmt"

// FaultError marks a controller failure: bad output shape, a runtime
// error inside the control function, or an exceeded execution budget.
// The simulation maps it to a terminal ControllerFault outcome with
// the message preserved for display.
type FaultError struct {
	Msg string
}

func (e *FaultError) Error() string {
	return "controller fault: " + e.Msg
}

func faultf(format string, args ...any) error {
	return &FaultError{Msg: fmt.Sprintf(format, args...)}
}
