// Package emulator provides an embeddable DMX frame emulator.
//
// An Emulator listens for TCP clients that send length-prefixed DMX frames,
// buffers the frames and, unless disabled, drains them into a monitor that
// tracks the current channel values.
//
// # Basic Usage
//
//	cfg := emulator.DefaultConfig()
//	cfg.Port = 5555
//
//	emu, err := emulator.New(cfg, emulator.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := emu.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer emu.Stop()
//
//	snap := emu.Snapshot()
//	v, _ := snap.Channel(1)
//
// # Consuming Frames Directly
//
// Pass [WithoutMonitor] and poll [Emulator.Frames] to take frames yourself.
// [Frames.TryTakeFrame] never blocks.
//
// # Event Handling
//
// Implement [EventHandler] and pass it via [WithEventHandler] to observe
// lifecycle transitions. Handlers are called synchronously and should return
// quickly.
//
// # Plugins
//
// Plugins registered with [WithPlugin] are initialized in order on Start and
// shut down in reverse order on Stop. A plugin that panics is treated as
// having returned an error.
//
// # Version
//
// Use [ModuleVersions] to get versions of all sub-modules.
package emulator
