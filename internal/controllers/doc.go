// Package controllers holds feedback controllers acting on the solver.
//
// [CFL] closes the loop between the measured flow speed and the timestep.
package controllers
