package main

import "github.com/charmbracelet/harmonica"

// SpinAxis is one rotation axis whose angular velocity eases back to zero
// on a critically damped spring.
type SpinAxis struct {
	Angle    float64
	Velocity float64 // Radians per frame

	spring harmonica.Spring
	accel  float64 // Spring state for Velocity
}

// NewSpinAxis returns an axis at rest, stepped at fps frames per second.
func NewSpinAxis(fps int) SpinAxis {
	return SpinAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Update advances the angle one frame and decays the velocity.
func (a *SpinAxis) Update() {
	a.Angle += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// Spin holds the model's pitch, yaw and roll.
type Spin struct {
	Pitch, Yaw, Roll SpinAxis
	fps              int
}

// NewSpin returns a spin state at rest.
func NewSpin(fps int) *Spin {
	s := &Spin{fps: fps}
	s.Reset()
	return s
}

// Update advances every axis one frame.
func (s *Spin) Update() {
	s.Pitch.Update()
	s.Yaw.Update()
	s.Roll.Update()
}

// Impulse adds angular velocity.
func (s *Spin) Impulse(pitch, yaw, roll float64) {
	s.Pitch.Velocity += pitch
	s.Yaw.Velocity += yaw
	s.Roll.Velocity += roll
}

// Reset stops the spin and returns to the initial orientation.
func (s *Spin) Reset() {
	s.Pitch = NewSpinAxis(s.fps)
	s.Yaw = NewSpinAxis(s.fps)
	s.Roll = NewSpinAxis(s.fps)
}

// Moving reports whether any axis still has noticeable velocity.
func (s *Spin) Moving() bool {
	const eps = 1e-4
	return abs(s.Pitch.Velocity) > eps || abs(s.Yaw.Velocity) > eps || abs(s.Roll.Velocity) > eps
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
