// Package monitor is the consumer side of the frame buffer. It polls a
// FrameSource on a fixed interval, applies every pending frame to a DMX
// universe and publishes the result as an immutable Snapshot.
package monitor
