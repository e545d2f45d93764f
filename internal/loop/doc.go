// Package loop provides the single cooperative event loop that owns all
// device-state synchronization state.
//
// Socket readers, Stream Deck callbacks and timer expiries never touch core
// state directly. They Post closures, and the loop goroutine runs them one
// at a time in FIFO order. Because every state transition happens on that
// one goroutine, the registry, gesture machines, mirrors and profile machines
// need no locking.
//
// # Timers
//
// Loop.AfterFunc returns a cancellable handle. Expiry does not run the
// callback directly; it posts a closure that re-checks the handle on the
// loop. A Stop issued from the loop therefore always wins, even if the
// underlying timer already expired and its callback is sitting in the
// queue. This is what lets a slot teardown cancel a hold timer safely.
//
// # Usage
//
//	l := loop.New(clock.Real{})
//	go l.Run(ctx)
//	l.Post(func() { registry.OnHidden(slot) })
//	err := l.Call(ctx, func() { status = snapshotStatus() })
package loop
