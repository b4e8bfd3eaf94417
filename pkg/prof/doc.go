// Package prof profiles the simulated stack.
//
// The receive path runs once per simulated edge interrupt and dominates a
// long poll or trim run, so a CPU profile of the CLI shows where the
// decoder spends its time:
//
//	bitusb --profile.cpu=cpu.prof trim --frames=100000
//	go tool pprof cpu.prof
//
// # CPU Profiling
//
// CPU profiling streams samples to a file and requires explicit start/stop:
//
//	if err := prof.StartCPU("cpu.prof"); err != nil {
//		return err
//	}
//	defer prof.StopCPU()
//
// Starting a second CPU profile while one is active returns
// [ErrCPUProfileActive].
//
// # Snapshot Profiles
//
// Heap, allocation and goroutine profiles are snapshots written on demand
// with [Write].
package prof
