// Package tui provides the live progress view for the analyze command.
//
// The view is read-only. It follows one run through its phases, showing each
// analyst task with a spinner while it runs and its outcome once it finishes,
// followed by the final report step and the run summary.
//
// Usage:
//
//	emitter := orchestrator.NewEventEmitter(256, logger)
//	go func() {
//	    res, err = o.Run(ctx, req)
//	    emitter.Close()
//	}()
//	err := tui.Run(emitter.Events(), tui.Options{Title: "ss 不锈钢", OnQuit: cancel})
//
// Pressing q or Ctrl+C calls OnQuit, which should cancel the run; the view
// keeps rendering until the event stream closes.
package tui
