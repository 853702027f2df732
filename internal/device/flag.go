package device

import "sync/atomic"

// ShutdownFlag is the shared "power down now" signal. The engine and the
// operator API set it; the supervisor loop reads it.
type ShutdownFlag struct {
	requested atomic.Bool
}

func (f *ShutdownFlag) RequestShutdown() { f.requested.Store(true) }

func (f *ShutdownFlag) Requested() bool { return f.requested.Load() }
