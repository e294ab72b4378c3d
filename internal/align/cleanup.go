package align

import "github.com/charmbracelet/log"

// cleanupRegistry collects release actions (temp file removal, and
// similar) registered during Execute and runs all of them on every exit
// path, success or failure, mirroring aeneas executetask's
// cleanup_info/_cleanup: actions run in LIFO order, and one action's
// failure never stops the rest from running.
type cleanupRegistry struct {
	actions []func() error
	logger  *log.Logger
}

func newCleanupRegistry(logger *log.Logger) *cleanupRegistry {
	return &cleanupRegistry{logger: logger}
}

// add registers an action to run when run() is called.
func (r *cleanupRegistry) add(action func() error) {
	r.actions = append(r.actions, action)
}

// run executes every registered action in LIFO order, logging (but not
// returning) individual failures.
func (r *cleanupRegistry) run() {
	for i := len(r.actions) - 1; i >= 0; i-- {
		if err := r.actions[i](); err != nil {
			r.logger.Warn("cleanup action failed", "err", err)
		}
	}
}
