package vm

import "fmt"

// Domain power state codes as reported by the hypervisor
// (libvirt VIR_DOMAIN_* values).
const (
	StateNoState     int32 = 0
	StateRunning     int32 = 1
	StateBlocked     int32 = 2
	StatePaused      int32 = 3
	StateShutdown    int32 = 4
	StateShutoff     int32 = 5
	StateCrashed     int32 = 6
	StatePMSuspended int32 = 7
)

// StateLabel maps a state code to its display label. The mapping is total
// over the codes above; any other code is an error for the caller to
// report, never a silent default.
func StateLabel(code int32) (string, error) {
	switch code {
	case StateNoState:
		return "unknown", nil
	case StateRunning:
		return "running", nil
	case StateBlocked:
		return "blocked", nil
	case StatePaused:
		return "paused", nil
	case StateShutdown:
		return "shutting down", nil
	case StateShutoff:
		return "stopped", nil
	case StateCrashed:
		return "crashed", nil
	case StatePMSuspended:
		return "suspended", nil
	}
	return "", fmt.Errorf("unknown domain state code %d", code)
}
