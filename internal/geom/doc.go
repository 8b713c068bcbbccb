// Package geom provides the 2D primitives shared by the physics engine.
//
//   - [Vector]: polar/Cartesian hybrid value (magnitude and angle are canonical)
//   - [Position]: mutable point in screen coordinates
//
// # Coordinate convention
//
// Positions live in screen space where y grows downward. Vectors use the
// usual mathematical orientation where positive angles turn counterclockwise
// and a positive Y component points up. [Between] performs the flip, and
// integrators subtract the Y component when moving a Position.
package geom
