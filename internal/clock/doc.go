// Package clock drives the animation: camera easing toward the pointer and a
// scheduler running two independent cadences, a per-frame task and a
// fixed-interval regeneration task.
//
// Both tasks execute on the scheduler's single goroutine, one at a time, so
// the state they share never needs locking. Work from other goroutines (HTTP
// handlers, for example) is marshalled onto the same goroutine with
// [Scheduler.Do].
package clock
