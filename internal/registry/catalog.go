package registry

// LoadFixedCatalog registers the beamline's fixed PV/motor catalog in
// the same order as the original simulator's devices_init: sensors
// first, then the shutter, then each motor (setpoint, readback,
// status, in that order). The order matters for LIST output and for
// motor lookup-by-setpoint-name, both of which iterate the arena.
//
// It returns ErrFull if maxPVs is too small to hold the fixed catalog
// — a misconfiguration, since the catalog's size is fixed at compile
// time, but one worth reporting rather than silently dropping devices.
func (r *Registry) LoadFixedCatalog() error {
	ringCurrent, err := r.register(registerParams{
		name: "BL02:RING:CURRENT", kind: AI, min: 0, max: 400,
		writable: false, law: lawRingCurrent,
	})
	if err != nil {
		return err
	}

	if _, err := r.register(registerParams{
		name: "BL02:VACUUM:PRESSURE", kind: AI, min: 1e-10, max: 1e-8,
		writable: false, law: lawVacuum,
	}); err != nil {
		return err
	}

	if _, err := r.register(registerParams{
		name: "BL02:HUTCH:TEMP", kind: AI, min: 20, max: 26,
		writable: false, law: lawHutchTemp,
	}); err != nil {
		return err
	}

	if err := r.registerDetector("BL02:DET:I0", ringCurrent, 500000.0, 10000.0, 1e6); err != nil {
		return err
	}
	if err := r.registerDetector("BL02:DET:IT", ringCurrent, 450000.0, 10000.0, 1e6); err != nil {
		return err
	}
	if err := r.registerDetector("BL02:DET:IF", ringCurrent, 50000.0, 1000.0, 1e5); err != nil {
		return err
	}

	shutterStatus, err := r.register(registerParams{
		name: "BL02:SHUTTER:STATUS", kind: BI, min: 0, max: 1,
		writable: false, law: lawShutterStatus,
	})
	if err != nil {
		return err
	}
	shutterCmd, err := r.register(registerParams{
		name: "BL02:SHUTTER:CMD", kind: BO, min: 0, max: 1,
		writable: true, law: lawNone,
	})
	if err != nil {
		return err
	}
	r.pvs[shutterStatus].depIdx = shutterCmd

	if err := r.registerMotor(motorSpec{
		name: "BL02:SAMPLE:X", min: -10000, max: 10000, velocity: 1000.0,
	}); err != nil {
		return err
	}
	if err := r.registerMotor(motorSpec{
		name: "BL02:SAMPLE:Y", min: -10000, max: 10000, velocity: 1000.0,
	}); err != nil {
		return err
	}
	if err := r.registerMotor(motorSpec{
		name: "BL02:SAMPLE:Z", min: -5000, max: 5000, velocity: 1000.0,
	}); err != nil {
		return err
	}
	if err := r.registerMotor(motorSpec{
		name: "BL02:SAMPLE:THETA", min: -180, max: 180, velocity: 10.0,
	}); err != nil {
		return err
	}
	if err := r.registerMotor(motorSpec{
		name: "BL02:MONO:ENERGY", min: 4000, max: 20000, velocity: 100.0,
		initialTarget: 8000.0, instantReadback: true,
	}); err != nil {
		return err
	}

	r.logger.Info("initialized simulated devices",
		"pvs", len(r.pvs), "motors", len(r.motors))
	return nil
}

// registerDetector registers one of the three ring-current-proportional
// detector channels (I0/IT/IF), which differ only in base amplitude,
// noise amplitude, and saturation ceiling.
func (r *Registry) registerDetector(name string, depIdx int, base, noiseAmp, max float64) error {
	idx, err := r.register(registerParams{
		name: name, kind: AI, min: 0, max: max,
		writable: false, law: lawDetector,
	})
	if err != nil {
		return err
	}
	pv := &r.pvs[idx]
	pv.depIdx = depIdx
	pv.detectorBase = base
	pv.detectorNoiseAmp = noiseAmp
	pv.detectorMax = max
	return nil
}

// motorSpec is a named-parameter bundle for registerMotor, mirroring
// the original's inline field-by-field motor initialisation.
type motorSpec struct {
	name            string
	min, max        float64
	velocity        float64
	initialTarget   float64
	instantReadback bool
}

// registerMotor registers a setpoint/.RBV/.DMOV triple and the Motor
// that ties them together.
func (r *Registry) registerMotor(spec motorSpec) error {
	setpoint, err := r.register(registerParams{
		name: spec.name, kind: AO, min: spec.min, max: spec.max,
		writable: true, law: lawNone,
	})
	if err != nil {
		return err
	}
	readback, err := r.register(registerParams{
		name: spec.name + ".RBV", kind: AI, min: spec.min, max: spec.max,
		writable: false, law: lawNone,
	})
	if err != nil {
		return err
	}
	status, err := r.register(registerParams{
		name: spec.name + ".DMOV", kind: BI, min: 0, max: 1,
		writable: false, law: lawNone,
	})
	if err != nil {
		return err
	}

	motorIdx := len(r.motors)
	r.motors = append(r.motors, Motor{
		Name:     spec.name,
		Setpoint: setpoint,
		Readback: readback,
		Status:   status,
		Velocity: spec.velocity,
		Target:   spec.initialTarget,
		Moving:   false,
	})

	r.pvs[setpoint].ownerMotor = motorIdx
	r.pvs[setpoint].instantReadback = spec.instantReadback

	if spec.initialTarget != 0 {
		r.pvs[readback].Value = spec.initialTarget
	}
	return nil
}
