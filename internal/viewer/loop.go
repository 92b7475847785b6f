package viewer

import (
	"errors"
	"fmt"
)

// Frame advances the session by dt seconds and draws it once. Queued
// parameter changes are applied first, so they show in this frame.
func (s *Session) Frame(dt float32) error {
	s.Params.Drain(s.Changes)

	s.Stats.Begin()
	defer s.Stats.End()

	s.Controls.AutoRotate = s.Options.AutoRotate
	s.Controls.Update(dt)

	if s.Options.PixelShader {
		s.Path = PostProcessed
		if s.composer == nil {
			return errors.New("frame: no composer for the pixel pass")
		}
		s.Pass.PixelSize = s.Options.PixelSize
		if err := s.composer.Render(s.Scene, s.Pass); err != nil {
			return fmt.Errorf("frame: %w", err)
		}
		return nil
	}

	s.Path = Direct
	if err := s.renderer.Render(s.Scene); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	return nil
}
