package magiclight

import (
	"time"
)

// Time tracks wall clock and frame delta.
type Time struct {
	Time   time.Time
	Dt     time.Duration
	Frames uint64
}

type TimeModule struct{}

func (mod TimeModule) Install(app *App) {
	app.AddResources(&Time{Time: time.Now()})
	app.UseSystemIn(PreUpdate, timeSystem)
}

func timeSystem(t *Time) {
	now := time.Now()
	t.Dt = now.Sub(t.Time)
	t.Time = now
	t.Frames++
}
