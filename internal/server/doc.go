// Package server accepts TCP clients and turns their byte streams into
// frames for a FrameSink.
//
// One goroutine runs the accept loop and one goroutine per connection runs a
// handler. Handlers share nothing but the sink. Shutdown is driven by a
// context: cancelling it (directly, through Stop, or through the parent
// context handed to Start) closes the listener and every connection socket so
// that blocked Accept and Read calls return at once.
package server
