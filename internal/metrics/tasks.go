package metrics

import (
	"github.com/san-kum/turb2d/internal/spectral"
)

// Value is the output of a task: a scalar, or a field when Field is set.
type Value struct {
	Scalar float64
	Field  *spectral.PhysicalField
}

type Task interface {
	Name() string
	Evaluate(e *Evaluation) Value
}

type scalarTask struct {
	name string
	fn   func(e *Evaluation) float64
}

func (s scalarTask) Name() string                 { return s.name }
func (s scalarTask) Evaluate(e *Evaluation) Value { return Value{Scalar: s.fn(e)} }

type fieldTask struct {
	name string
	fn   func(e *Evaluation) *spectral.Field
}

func (f fieldTask) Name() string { return f.name }
func (f fieldTask) Evaluate(e *Evaluation) Value {
	return Value{Field: e.Physical(f.fn(e))}
}

// Scalar builds a task from a function of the evaluation.
func Scalar(name string, fn func(e *Evaluation) float64) Task {
	return scalarTask{name: name, fn: fn}
}

// FieldOf builds a task that outputs a spectral field on the native grid.
func FieldOf(name string, fn func(e *Evaluation) *spectral.Field) Task {
	return fieldTask{name: name, fn: fn}
}

// Energy is the domain average of |u|²/2.
func Energy(e *Evaluation) float64 {
	ux, uy := e.Velocity()
	return 0.5 * (ux.Power() + uy.Power())
}

// Enstrophy is the domain average of w²/2.
func Enstrophy(e *Evaluation) float64 {
	return 0.5 * e.W.Power()
}

// EnergyFriction is the energy tendency due to linear friction, -2 alpha E.
func EnergyFriction(e *Evaluation) float64 {
	return -2 * e.Params.Alpha * Energy(e)
}

func EnstrophyFriction(e *Evaluation) float64 {
	return -2 * e.Params.Alpha * Enstrophy(e)
}

// EnergyViscosity is <nu u·∇²u> = -nu Σ k² |u|².
func EnergyViscosity(e *Evaluation) float64 {
	ux, uy := e.Velocity()
	g := e.Grid()
	return -e.Params.Nu * (weightedPower(ux, g.K2) + weightedPower(uy, g.K2))
}

// EnstrophyViscosity is <nu w ∇²w> = -nu Σ k² |w|².
func EnstrophyViscosity(e *Evaluation) float64 {
	return -e.Params.Nu * weightedPower(e.W, e.Grid().K2)
}

// ScalarTasks returns the default scalar diagnostics.
func ScalarTasks() []Task {
	return []Task{
		Scalar("E", Energy),
		Scalar("Z", Enstrophy),
		Scalar("E friction", EnergyFriction),
		Scalar("Z friction", EnstrophyFriction),
		Scalar("E viscosity", EnergyViscosity),
		Scalar("Z viscosity", EnstrophyViscosity),
	}
}

// SnapshotTasks returns the default field outputs.
//
// psi is the solution of ∇²psi = w with zero mean, so w = cos x gives
// psi = -cos x. Codes that define the streamfunction by w = -∇²psi write
// the same field with the opposite sign.
func SnapshotTasks() []Task {
	return []Task{
		FieldOf("psi", (*Evaluation).Streamfunction),
		FieldOf("vorticity", func(e *Evaluation) *spectral.Field { return e.W }),
	}
}
