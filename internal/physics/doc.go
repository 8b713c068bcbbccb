// Package physics implements the gravitating disc bodies and their traces.
//
// A [Body] is advanced once per tick by calling, in order,
// [Body.UpdateForces], [Body.UpdateAcceleration], [Body.UpdateVelocity] and
// [Body.UpdatePosition]. Every step is proportional to the tick's delta time.
//
// Collisions are soft: two bodies touch when their half radii overlap the
// distance between their centres. Touching bodies push against each other's
// attraction and may only move apart on each axis; momentum is not conserved.
package physics
