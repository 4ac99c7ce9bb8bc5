package magiclight

import (
	giapp "github.com/sschneiders/magiclight/gi/app"
)

// Light2DState holds the GPU pipeline of the light renderer.
type Light2DState struct {
	GI *giapp.App
}

// Close releases the GPU pipeline. Called by the App on shutdown.
func (st *Light2DState) Close() {
	if st.GI != nil {
		st.GI.Release()
		st.GI = nil
	}
}

// Light2DModule wires the 2D global illumination renderer into an App. It
// provides a World resource for scene content and drives extraction, upload,
// dispatch and composition every frame.
type Light2DModule struct {
	// Settings may be nil; defaults are used.
	Settings *Settings
}

func (m Light2DModule) Install(app *App) {
	settings := m.Settings
	if settings == nil {
		settings = DefaultSettings()
	}
	NewPlatformWindow(0, 0, "").Install(app)

	app.AddResources(settings, NewWorld(), &Light2DState{})
	app.UseStartupSystem(initLight2DSystem)
	app.UseSystemIn(PreRender, syncWorldSystem)
	app.UseSystemIn(Render, lightPassSystem)
}

func initLight2DSystem(app *App, ws *WindowState, settings *Settings, st *Light2DState) {
	logger := app.Logger()
	if settings.Debug {
		logger.SetDebug(true)
	}
	st.GI = giapp.New(ws.Window(), settings.GIConfig(), logger)
	if err := st.GI.Init(); err != nil {
		logger.Errorf("light renderer init failed: %v", err)
		app.Exit()
		return
	}
	logger.Infof("light renderer ready (%dx%d)", ws.Width, ws.Height)
}

func syncWorldSystem(world *World, st *Light2DState) {
	if st.GI == nil {
		return
	}
	world.Sync(st.GI.Scene)
}

func lightPassSystem(app *App, st *Light2DState) {
	if st.GI == nil {
		return
	}
	logger := app.Logger()
	if err := st.GI.Update(); err != nil {
		logger.Errorf("light pass update: %v", err)
		return
	}
	if err := st.GI.Render(); err != nil {
		logger.Errorf("light pass render: %v", err)
	}
}
