package constraint

// TimeStep holds the current and previous step durations. The solver scales
// the warm start impulses by the ratio of the two.
type TimeStep struct {
	dt     float64
	invDt  float64
	dt0    float64
	invDt0 float64
}

// NewTimeStep creates a time step whose previous step has the same duration
func NewTimeStep(dt float64) TimeStep {
	s := TimeStep{}
	s.dt, s.invDt = dt, inverse(dt)
	s.dt0, s.invDt0 = s.dt, s.invDt
	return s
}

// Update starts a new step of duration dt
func (s *TimeStep) Update(dt float64) {
	s.dt0, s.invDt0 = s.dt, s.invDt
	s.dt, s.invDt = dt, inverse(dt)
}

func (s TimeStep) DeltaTime() float64         { return s.dt }
func (s TimeStep) InverseDeltaTime() float64  { return s.invDt }
func (s TimeStep) PreviousDeltaTime() float64 { return s.dt0 }

// DeltaTimeRatio returns dt / dt0, or 1 before the first step
func (s TimeStep) DeltaTimeRatio() float64 {
	if s.invDt0 == 0 {
		return 1
	}
	return s.dt * s.invDt0
}

func inverse(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return 1.0 / dt
}
