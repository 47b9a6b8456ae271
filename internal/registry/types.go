package registry

import "errors"

// Kind is the process-variable type, mirroring EPICS-style AI/AO/BI/BO
// records: analog/binary, input/output.
type Kind uint8

const (
	AI Kind = iota // Analog Input
	AO             // Analog Output
	BI             // Binary Input
	BO             // Binary Output
)

func (k Kind) String() string {
	switch k {
	case AI:
		return "AI"
	case AO:
		return "AO"
	case BI:
		return "BI"
	case BO:
		return "BO"
	default:
		return "UNKNOWN"
	}
}

// law tags the simulation update function a PV runs each tick. This is
// the Go stand-in for the original's function-pointer field: a closed,
// inspectable set of variants instead of an opaque callback.
type law uint8

const (
	lawNone law = iota
	lawRingCurrent
	lawVacuum
	lawHutchTemp
	lawDetector
	lawShutterStatus
)

// PV is a single simulated process variable. PVs live in a Registry's
// arena (a slice) and are addressed by stable integer handles rather
// than pointers, so a Motor can reference its setpoint/readback/status
// PVs by index without aliasing concerns.
type PV struct {
	Name     string
	Kind     Kind
	Value    float64
	Min, Max float64
	Writable bool

	law law

	// detectorBase/detectorNoiseAmp/detectorMax parameterise lawDetector;
	// depIdx is the handle of the PV a detector or the shutter law reads
	// from (always BL02:RING:CURRENT or BL02:SHUTTER:CMD in the fixed
	// catalog, but never looked up by name at tick time).
	detectorBase     float64
	detectorNoiseAmp float64
	detectorMax      float64
	depIdx           int

	// drift carries the hutch temperature sensor's persistent random
	// walk across ticks, replacing the original's function-local static.
	drift float64

	// ownerMotor and instantReadback implement the monochromator's
	// immediate-readback special case: a PUT to this PV, if it is a
	// motor setpoint with instantReadback set, writes straight through
	// to the motor's readback PV instead of waiting for interpolation.
	ownerMotor      int
	instantReadback bool
}

// Motor is a simulated positioner: a writable setpoint PV, a read-only
// readback PV that interpolates toward the setpoint over time, and a
// read-only IDLE/MOVING status PV.
type Motor struct {
	Name     string // setpoint PV name, used for lookup
	Setpoint int    // handle into Registry.pvs
	Readback int
	Status   int
	Velocity float64 // units/s
	Target   float64
	Moving   bool
}

// ErrFull is returned by registration when the PV arena has reached
// its configured capacity.
var ErrFull = errors.New("registry: pv arena full")

// ErrNotFound is returned by operations addressing a PV or motor by a
// name that isn't registered.
var ErrNotFound = errors.New("registry: not found")

// ErrNotWritable is returned when Set targets a read-only PV.
var ErrNotWritable = errors.New("registry: pv not writable")

// ErrOutOfRange is returned when Set or MoveMotor targets a value
// outside the PV's configured [Min, Max].
var ErrOutOfRange = errors.New("registry: value out of range")
