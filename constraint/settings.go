package constraint

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSetting is returned when a setting is out of its valid range.
var ErrInvalidSetting = errors.New("constraint: invalid setting")

// Settings holds the solver iteration counts and tolerances. Lengths are in
// meters, angles in radians, velocities per second.
type Settings struct {
	// StepFrequency is the fixed time step used by World.Update
	StepFrequency float64 `yaml:"step_frequency"`

	VelocityIterations int `yaml:"velocity_iterations"`
	PositionIterations int `yaml:"position_iterations"`

	WarmStart bool `yaml:"warm_start"`
	// WarmStartDistance is how far a vertex contact may move and still be
	// warm started from the previous step
	WarmStartDistance float64 `yaml:"warm_start_distance"`

	// RestitutionVelocity is the approach speed under which contacts do not bounce
	RestitutionVelocity float64 `yaml:"restitution_velocity"`

	// LinearTolerance is the penetration allowed to remain after position correction
	LinearTolerance  float64 `yaml:"linear_tolerance"`
	AngularTolerance float64 `yaml:"angular_tolerance"`

	MaxLinearCorrection  float64 `yaml:"max_linear_correction"`
	MaxAngularCorrection float64 `yaml:"max_angular_correction"`

	// Baumgarte is the fraction of the penetration removed per position iteration
	Baumgarte float64 `yaml:"baumgarte"`

	MaxTranslation float64 `yaml:"max_translation"`
	MaxRotation    float64 `yaml:"max_rotation"`

	AtRestDetection       bool    `yaml:"at_rest_detection"`
	AtRestLinearVelocity  float64 `yaml:"at_rest_linear_velocity"`
	AtRestAngularVelocity float64 `yaml:"at_rest_angular_velocity"`
	AtRestTime            float64 `yaml:"at_rest_time"`
}

// DefaultSettings returns settings tuned for bodies measured in meters
func DefaultSettings() Settings {
	return Settings{
		StepFrequency:         1.0 / 60.0,
		VelocityIterations:    10,
		PositionIterations:    10,
		WarmStart:             true,
		WarmStartDistance:     0.01,
		RestitutionVelocity:   1,
		LinearTolerance:       0.005,
		AngularTolerance:      2 * math.Pi / 180,
		MaxLinearCorrection:   0.2,
		MaxAngularCorrection:  8 * math.Pi / 180,
		Baumgarte:             0.2,
		MaxTranslation:        2,
		MaxRotation:           0.5 * math.Pi,
		AtRestDetection:       true,
		AtRestLinearVelocity:  0.01,
		AtRestAngularVelocity: 2 * math.Pi / 180,
		AtRestTime:            0.5,
	}
}

// Validate checks every setting and reports the first one out of range.
func (s Settings) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"step_frequency", s.StepFrequency},
		{"max_translation", s.MaxTranslation},
		{"max_rotation", s.MaxRotation},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidSetting, p.name, p.value)
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"warm_start_distance", s.WarmStartDistance},
		{"restitution_velocity", s.RestitutionVelocity},
		{"linear_tolerance", s.LinearTolerance},
		{"angular_tolerance", s.AngularTolerance},
		{"max_linear_correction", s.MaxLinearCorrection},
		{"max_angular_correction", s.MaxAngularCorrection},
		{"at_rest_linear_velocity", s.AtRestLinearVelocity},
		{"at_rest_angular_velocity", s.AtRestAngularVelocity},
		{"at_rest_time", s.AtRestTime},
	}
	for _, n := range nonNegative {
		if n.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidSetting, n.name, n.value)
		}
	}

	if s.VelocityIterations < 1 {
		return fmt.Errorf("%w: velocity_iterations must be at least 1, got %d", ErrInvalidSetting, s.VelocityIterations)
	}
	if s.PositionIterations < 1 {
		return fmt.Errorf("%w: position_iterations must be at least 1, got %d", ErrInvalidSetting, s.PositionIterations)
	}
	if s.Baumgarte < 0 || s.Baumgarte > 1 {
		return fmt.Errorf("%w: baumgarte must be in [0, 1], got %v", ErrInvalidSetting, s.Baumgarte)
	}
	return nil
}

// LoadSettings decodes a YAML document over the default settings. Keys left
// out keep their default value, unknown keys are rejected.
func LoadSettings(r io.Reader) (Settings, error) {
	settings := DefaultSettings()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("constraint: decoding settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
