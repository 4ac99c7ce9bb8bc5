package magiclight

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module contributes resources and systems to an App.
type Module interface {
	Install(app *App)
}

// App is a small stage-driven runner. Modules install resources and systems;
// systems are plain functions whose pointer arguments are resolved from the
// resource registry by type.
type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	startup   []systemFn
	resources map[reflect.Type]any
	built     bool
	exiting   bool
}

func NewApp() *App {
	return &App{
		stages:    []Stage{PreUpdate, Update, PostUpdate, PreRender, Render},
		systems:   map[string][]systemFn{},
		resources: map[reflect.Type]any{},
	}
}

func (app *App) UseModules(modules ...Module) *App {
	app.modules = append(app.modules, modules...)
	return app
}

// AddResources registers pointers to resources. A type may only be
// registered once.
func (app *App) AddResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// UseSystem schedules a system in the Update stage.
func (app *App) UseSystem(system systemFn) *App {
	return app.UseSystemIn(Update, system)
}

func (app *App) UseSystemIn(stage Stage, system systemFn) *App {
	app.systems[stage.Name] = append(app.systems[stage.Name], system)
	return app
}

// UseStartupSystem schedules a system to run once before the first frame.
func (app *App) UseStartupSystem(system systemFn) *App {
	app.startup = append(app.startup, system)
	return app
}

// Exit stops the run loop after the current frame.
func (app *App) Exit() {
	app.exiting = true
}

// Resource looks up a registered resource by type. It panics when the
// resource is missing; modules are expected to install their dependencies.
func Resource[T any](app *App) *T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	r, ok := app.resources[t]
	if !ok {
		panic(fmt.Sprintf("resource %s not registered", t))
	}
	return r.(*T)
}

func (app *App) build() {
	if app.built {
		return
	}
	app.built = true
	for _, module := range app.modules {
		module.Install(app)
	}
	for _, system := range app.startup {
		app.callSystem(system)
	}
}

// RunFrame executes every stage once. Useful for tests and external loops.
func (app *App) RunFrame() {
	app.build()
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

// Run drives frames until a system calls Exit or the window (when present)
// is closed.
func (app *App) Run() {
	app.build()
	for !app.exiting {
		if ws := app.windowState(); ws != nil {
			if ws.ShouldClose() {
				break
			}
			ws.PollEvents()
		}
		app.RunFrame()
	}
	app.shutdown()
}

func (app *App) windowState() *WindowState {
	t := reflect.TypeOf(WindowState{})
	if r, ok := app.resources[t]; ok {
		return r.(*WindowState)
	}
	return nil
}

func (app *App) shutdown() {
	for _, r := range app.resources {
		if c, ok := r.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

var typeOfApp = reflect.TypeOf(App{})

// callSystem invokes a system resolving each pointer argument from the
// resource registry. *App is always resolvable.
func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfApp {
			args[i] = reflect.ValueOf(app)
			continue
		}
		resource, ok := app.resources[underlyingType]
		if !ok {
			panic(fmt.Sprintf("unable to resolve system dependency\nsystem: %s\ndependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				argType,
			))
		}
		args[i] = reflect.ValueOf(resource)
	}
	systemValue.Call(args)
}
