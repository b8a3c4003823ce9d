package catalog

import log "github.com/sirupsen/logrus"

// unitOfWork accumulates compensating actions as a DDL statement
// progresses and fires them in reverse on failure. Compensations are
// best-effort: a secondary failure is logged and swallowed so the
// primary error is always what the caller sees.
type unitOfWork struct {
	undo []func()
}

func (u *unitOfWork) record(undo func()) {
	u.undo = append(u.undo, undo)
}

// rollback fires every recorded compensation in reverse order.
func (u *unitOfWork) rollback() {
	for i := len(u.undo) - 1; i >= 0; i-- {
		safeCall(u.undo[i])
	}
}

func safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Warn("catalog: compensating action panicked, continuing rollback")
		}
	}()
	fn()
}
