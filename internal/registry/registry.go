package registry

import (
	"math"
	"math/rand"

	"github.com/coriolis-labs/pvsim/internal/glob"
)

// Registry owns the arena of simulated PVs and motors. It has no
// internal locking: callers (in this project, the server's single
// dispatch goroutine) must guarantee exclusive access, the same
// single-owner-mutates-state invariant the original beamline simulator
// got for free from being single-threaded.
type Registry struct {
	logger Logger
	rng    *rand.Rand

	maxPVs int

	pvs    []PV
	byName map[string]int
	motors []Motor
}

// New creates an empty Registry with room for maxPVs PVs. Call
// LoadFixedCatalog (or register PVs/motors directly) before use.
func New(maxPVs int, rng *rand.Rand) *Registry {
	return &Registry{
		logger: noopLogger{},
		rng:    rng,
		maxPVs: maxPVs,
		byName: make(map[string]int),
	}
}

// SetLogger installs a logger for registration/refusal diagnostics.
func (r *Registry) SetLogger(l Logger) {
	if l != nil {
		r.logger = l
	}
}

// registerParams mirrors the original's pv_register_params_t: a
// named-parameter bundle for registering one PV.
type registerParams struct {
	name     string
	kind     Kind
	min, max float64
	writable bool
	law      law
}

// register allocates a new PV in the arena and returns its handle, or
// -1 and ErrFull if the arena is at capacity (logged, never fatal —
// matches the original's "log and return NULL" refusal on
// exhaustion).
func (r *Registry) register(p registerParams) (int, error) {
	if len(r.pvs) >= r.maxPVs {
		r.logger.Error("pv registry full, cannot register", "name", p.name)
		return -1, ErrFull
	}

	idx := len(r.pvs)
	r.pvs = append(r.pvs, PV{
		Name:       p.name,
		Kind:       p.kind,
		Value:      0.0,
		Min:        p.min,
		Max:        p.max,
		Writable:   p.writable,
		law:        p.law,
		ownerMotor: -1,
	})
	r.byName[p.name] = idx
	return idx, nil
}

// PVCount returns the number of registered PVs.
func (r *Registry) PVCount() int { return len(r.pvs) }

// MotorCount returns the number of registered motors.
func (r *Registry) MotorCount() int { return len(r.motors) }

// Find returns the handle of the PV named name, or -1 if unknown.
func (r *Registry) Find(name string) int {
	idx, ok := r.byName[name]
	if !ok {
		return -1
	}
	return idx
}

// Get returns the current value of the PV at idx. Callers should
// guard with Find first; Get on an invalid handle returns 0, matching
// the original's pv_get(NULL) behaviour.
func (r *Registry) Get(idx int) float64 {
	if idx < 0 || idx >= len(r.pvs) {
		return 0
	}
	return r.pvs[idx].Value
}

// Set writes value to the PV at idx, enforcing writability and range,
// and applying the monochromator-style instant-readback side effect
// when the PV is flagged for it.
func (r *Registry) Set(idx int, value float64) error {
	if idx < 0 || idx >= len(r.pvs) {
		return ErrNotFound
	}
	pv := &r.pvs[idx]
	if !pv.Writable {
		return ErrNotWritable
	}
	if value < pv.Min || value > pv.Max {
		return ErrOutOfRange
	}

	pv.Value = value

	if pv.instantReadback && pv.ownerMotor >= 0 {
		r.pvs[r.motors[pv.ownerMotor].Readback].Value = value
	}

	return nil
}

// List returns the names of PVs matching pattern (glob syntax, '*'
// wildcard) in registration order, up to maxLen bytes of combined
// comma-joined output — truncating silently once the budget is spent,
// exactly as the original's pv_list does.
func (r *Registry) List(pattern string, maxLen int) string {
	buf := make([]byte, 0, maxLen)
	for _, pv := range r.pvs {
		if !glob.Match(pattern, pv.Name) {
			continue
		}

		extra := len(pv.Name)
		if len(buf) > 0 {
			extra++ // separating comma
		}
		if len(buf)+extra >= maxLen {
			break
		}

		if len(buf) > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, pv.Name...)
	}
	return string(buf)
}

// FindMotor returns the handle of the motor whose setpoint PV is
// named name, or -1 if unknown.
func (r *Registry) FindMotor(name string) int {
	for i, m := range r.motors {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// MoveMotor starts motor idx moving toward target, subject to the
// setpoint PV's configured range. It writes target into the setpoint
// PV's value immediately (per the original's motor_move, which is not
// just bookkeeping — clients reading the setpoint back see the
// commanded value right away, before the readback catches up).
func (r *Registry) MoveMotor(idx int, target float64) error {
	if idx < 0 || idx >= len(r.motors) {
		return ErrNotFound
	}
	m := &r.motors[idx]
	sp := &r.pvs[m.Setpoint]

	if target < sp.Min || target > sp.Max {
		return ErrOutOfRange
	}

	m.Target = target
	sp.Value = target
	m.Moving = true
	r.pvs[m.Status].Value = 1.0 // MOVING

	return nil
}

// MotorStatusString returns "MOVING" or "IDLE" for motor idx.
func (r *Registry) MotorStatusString(idx int) string {
	if idx < 0 || idx >= len(r.motors) {
		return "UNKNOWN"
	}
	if r.motors[idx].Moving {
		return "MOVING"
	}
	return "IDLE"
}

// Update advances the simulation by dt seconds: every PV with a
// non-none update law runs once, in registration order, then every
// motor interpolates toward its target. This is the same "one pass
// over an index-addressed arena per tick" shape as a double-buffered
// circuit simulation's Step, except PVs here are single-buffered: a law
// that reads another PV sees whatever that PV holds at that point in
// the pass (e.g. detectors, registered after the ring current, read the
// ring-current value already written earlier in this same tick).
func (r *Registry) Update(dt float64) {
	for i := range r.pvs {
		r.applyLaw(i)
	}
	for i := range r.motors {
		r.updateMotor(i, dt)
	}
}

func (r *Registry) applyLaw(idx int) {
	pv := &r.pvs[idx]
	switch pv.law {
	case lawNone:
		return
	case lawRingCurrent:
		noise := (r.rng.Float64() - 0.5) * 4.0
		pv.Value = clamp(350.0+noise, 0, 400)
	case lawVacuum:
		logP := -8.3 + (r.rng.Float64()-0.5)*0.2
		pv.Value = clamp(math.Pow(10, logP), 1e-10, 1e-8)
	case lawHutchTemp:
		pv.drift += (r.rng.Float64() - 0.5) * 0.01
		pv.Value = clamp(23.0+pv.drift, 20, 26)
	case lawDetector:
		if pv.depIdx < 0 || pv.depIdx >= len(r.pvs) {
			return
		}
		ringCurrent := r.pvs[pv.depIdx].Value
		factor := ringCurrent / 350.0
		noise := (r.rng.Float64() - 0.5) * pv.detectorNoiseAmp
		pv.Value = clamp(pv.detectorBase*factor+noise, 0, pv.detectorMax)
	case lawShutterStatus:
		if pv.depIdx < 0 || pv.depIdx >= len(r.pvs) {
			return
		}
		pv.Value = r.pvs[pv.depIdx].Value
	}
}

func (r *Registry) updateMotor(idx int, dt float64) {
	m := &r.motors[idx]
	if !m.Moving {
		return
	}

	rb := &r.pvs[m.Readback]
	diff := m.Target - rb.Value

	const epsilon = 0.001
	step := m.Velocity * dt

	switch {
	case absf(diff) < epsilon:
		m.Moving = false
		rb.Value = m.Target
		r.pvs[m.Status].Value = 0.0 // IDLE
	case absf(diff) < step:
		rb.Value = m.Target
		m.Moving = false
		r.pvs[m.Status].Value = 0.0
	default:
		if diff > 0 {
			rb.Value += step
		} else {
			rb.Value -= step
		}
		r.pvs[m.Status].Value = 1.0 // MOVING
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
