package render

import "time"

// Stats measures frames per second over one-second windows.
type Stats struct {
	now    func() time.Time
	frames int
	start  time.Time
	fps    float64
	total  uint64
}

// NewStats returns a counter starting now.
func NewStats() *Stats {
	return newStatsAt(time.Now)
}

func newStatsAt(now func() time.Time) *Stats {
	return &Stats{now: now, start: now()}
}

// Tick records one frame.
func (s *Stats) Tick() {
	s.frames++
	s.total++
	elapsed := s.now().Sub(s.start)
	if elapsed >= time.Second {
		s.fps = float64(s.frames) / elapsed.Seconds()
		s.frames = 0
		s.start = s.now()
	}
}

// FPS returns the rate measured over the last complete window.
func (s *Stats) FPS() float64 {
	return s.fps
}

// Frames returns the number of frames recorded.
func (s *Stats) Frames() uint64 {
	return s.total
}
