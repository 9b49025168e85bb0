// Package watcher turns file system activity in a Serato crate directory
// into conversion triggers.
//
// A Watcher observes the crate directory and its subdirectories with
// fsnotify. Crate file changes and subdirectory creation or removal are
// relevant; everything else is ignored. Each relevant event restarts a
// quiet-period timer, and when the timer expires one value is sent on
// Triggers. The trigger channel holds a single value, so bursts that
// arrive while a conversion is running collapse into one follow-up run.
//
// Failures that end observation are delivered on Errors as *WatchError.
// An event queue overflow is not one of them: it only means events were
// lost, so the watcher schedules a trigger and carries on.
package watcher
