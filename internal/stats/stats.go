// Package stats measures frame time and frame rate for the on-screen overlay.
package stats

import (
	"fmt"
	"time"
)

// Stats brackets each frame with Begin and End. MS is the duration of the last
// frame; FPS is recomputed once per second from the frames completed in it.
type Stats struct {
	now func() time.Time

	begin  time.Time
	prev   time.Time
	frames int

	ms     float64
	fps    float64
	minFPS float64
	maxFPS float64

	drawn bool

	objects, vertices, triangles int
}

func New() *Stats {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Stats {
	t := now()
	return &Stats{now: now, begin: t, prev: t}
}

func (s *Stats) Begin() {
	s.begin = s.now()
}

func (s *Stats) End() {
	t := s.now()
	s.frames++
	s.ms = float64(t.Sub(s.begin)) / float64(time.Millisecond)

	if elapsed := t.Sub(s.prev); elapsed >= time.Second {
		s.fps = float64(s.frames) / elapsed.Seconds()
		if s.minFPS == 0 || s.fps < s.minFPS {
			s.minFPS = s.fps
		}
		if s.fps > s.maxFPS {
			s.maxFPS = s.fps
		}
		s.prev = t
		s.frames = 0
	}
}

func (s *Stats) FPS() float64 { return s.fps }
func (s *Stats) MS() float64  { return s.ms }

// SetDrawCounts records what the last frame drew. Until it is first called
// Lines omits the draw line.
func (s *Stats) SetDrawCounts(objects, vertices, triangles int) {
	s.drawn = true
	s.objects, s.vertices, s.triangles = objects, vertices, triangles
}

// Lines formats the overlay text.
func (s *Stats) Lines() []string {
	lines := []string{
		fmt.Sprintf("%.0f FPS (%.0f-%.0f)", s.fps, s.minFPS, s.maxFPS),
		fmt.Sprintf("%.1f MS", s.ms),
	}
	if s.drawn {
		lines = append(lines, fmt.Sprintf("%d obj %d verts %d tris", s.objects, s.vertices, s.triangles))
	}
	return lines
}
