// Package levels cycles a fixed pool of particle groups through the camera.
//
// Every group is keyed by (level, subset). Groups scroll toward the viewer by
// a uniform speed each tick; a group whose depth passes the camera plane is
// recycled to the back of the queue. New orbits are published to a shared
// [Generation] and applied lazily: a group adopts the latest generation only
// when it next crosses the camera, so a regeneration sweeps through the field
// one level at a time instead of cutting all at once.
//
// Groups never hold private copies of point data. They keep a handle to the
// generation they were painted from and read their subset out of it.
package levels
