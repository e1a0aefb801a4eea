package sim

import (
	"github.com/san-kum/turb2d/internal/controllers"
	"github.com/san-kum/turb2d/internal/dynamo"
	"github.com/san-kum/turb2d/internal/forcing"
	"github.com/san-kum/turb2d/internal/physics"
	"github.com/san-kum/turb2d/internal/spectral"
)

// Config fully describes a run. All derived quantities (viscosity,
// friction, max_dt) are expected to be resolved by the caller.
type Config struct {
	Length     float64
	Resolution int
	Dealias    float64

	Physics        physics.Params
	ForcingEnabled bool
	Forcing        forcing.Spec

	Timestepper string
	CFL         controllers.CFLConfig

	StopTime      float64
	StopIteration int
	LogCadence    int

	SnapshotsDt float64
	ScalarsDt   float64

	Initial InitialCondition
}

// Observer is notified after every completed iteration. The field must not
// be retained or modified.
type Observer interface {
	OnStep(state dynamo.State, w *spectral.Field)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(state dynamo.State, w *spectral.Field)

func (f ObserverFunc) OnStep(state dynamo.State, w *spectral.Field) { f(state, w) }
