package translit

import "fmt"

// Stage names the step of a verification in which a driver error happened.
type Stage string

const (
	StageOpenPage Stage = "open-page"
	StageNavigate Stage = "navigate"
	StageFill     Stage = "fill"
	StageSettle   Stage = "settle"
	StageRead     Stage = "read"
)

// DriverError is a failure of the browser driver (or of the site) during one verification step.
type DriverError struct {
	Stage Stage
	Err   error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Err)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}
