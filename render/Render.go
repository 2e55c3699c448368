// Package render draws navigation arenas and robot trajectories as
// PNG images for offline inspection of training runs.
package render

import (
	"fmt"

	"github.com/fogleman/gg"

	"github.com/robomesh/swarmlearn/environment/navigation"
	"github.com/robomesh/swarmlearn/experience"
)

const (
	// PixelsPerUnit is the rendering scale of arena coordinates
	PixelsPerUnit = 48

	// Margin is the border, in pixels, around the drawn arena
	Margin = 24
)

// Trajectory renders the arena described by config together with the
// positions visited by states and writes the image to filename. States
// with fewer than two position coordinates are skipped.
func Trajectory(config navigation.Config, states []experience.State,
	filename string) error {

	if err := config.Validate(); err != nil {
		return fmt.Errorf("trajectory: %v", err)
	}

	width := int(config.Width*PixelsPerUnit) + 2*Margin
	height := int(config.Height*PixelsPerUnit) + 2*Margin
	dc := gg.NewContext(width, height)

	// Arena y grows upward, image y grows downward
	toX := func(x float64) float64 { return Margin + x*PixelsPerUnit }
	toY := func(y float64) float64 {
		return float64(height) - Margin - y*PixelsPerUnit
	}

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(2)
	dc.DrawRectangle(Margin, Margin, config.Width*PixelsPerUnit,
		config.Height*PixelsPerUnit)
	dc.Stroke()

	for _, o := range config.Obstacles {
		dc.SetRGBA(0.5, 0.5, 0.5, 0.8)
		dc.DrawCircle(toX(o.X), toY(o.Y), o.Radius*PixelsPerUnit)
		dc.Fill()
	}

	dc.SetRGBA(0.1, 0.7, 0.2, 0.6)
	dc.DrawCircle(toX(config.Goal[0]), toY(config.Goal[1]),
		navigation.GoalRadius*PixelsPerUnit)
	dc.Fill()

	dc.SetRGB(0.8, 0.3, 0.1)
	dc.DrawCircle(toX(config.Start[0]), toY(config.Start[1]), 5)
	dc.Fill()

	dc.SetRGB(0.1, 0.3, 0.8)
	dc.SetLineWidth(1.5)
	started := false
	for _, s := range states {
		if len(s.Position) < 2 {
			continue
		}
		x, y := toX(s.Position[0]), toY(s.Position[1])
		if !started {
			dc.MoveTo(x, y)
			started = true
			continue
		}
		dc.LineTo(x, y)
	}
	dc.Stroke()

	for _, s := range states {
		if len(s.Position) < 2 {
			continue
		}
		dc.DrawCircle(toX(s.Position[0]), toY(s.Position[1]), 2)
		dc.Fill()
	}

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("trajectory: %v", err)
	}
	return nil
}
