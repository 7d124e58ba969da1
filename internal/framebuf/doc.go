// Package framebuf provides the lock-protected hand-off between connection
// handlers (producers) and the polling frame consumer.
//
// The buffer is the single synchronization point of the ingestion path.
// Every operation holds one mutex for O(1) work and never blocks otherwise.
//
// # Ordering
//
// FIFO (default) serves frames in arrival order. LIFO serves the most recently
// pushed frame first, for clients written against stack-ordered emulators;
// under sustained load it can starve older frames.
//
// # Capacity
//
// A bounded buffer applies an overflow policy when full:
//   - DropOldest evicts the oldest stored frame to make room (default)
//   - DropNewest discards the incoming frame
//
// A capacity of zero means unbounded.
package framebuf
