// Package ports defines the interfaces (ports) that connect the ingestion core
// to its collaborators.
//
// Ports are the boundaries between the connection server and the outside
// world. They define what the core needs without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [FrameSink]: receives decoded frames from connection handlers
//   - [FrameSource]: hands frames to a polling consumer without blocking
//   - [FrameStore]: both of the above; satisfied by framebuf.Buffer
//
// # Usage
//
// The server (internal/server) depends only on FrameSink and the monitor
// (internal/monitor) depends only on FrameSource. The frame buffer
// (internal/framebuf) satisfies both and is the single hand-off point between
// producer goroutines and the consumer.
//
// This separation enables:
//   - Testing the server with a recording sink
//   - Testing the monitor with a scripted source
//   - Replacing the buffer without touching either side
package ports
