package region

import "time"

// reapLoop periodically purges expired entries so that keys written once and
// never read again do not hold memory indefinitely. It takes the region lock
// through PurgeExpired like any foreground operation.
func (r *Region[K, V]) reapLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.reapEvery)
	defer ticker.Stop()

	r.log.V(1).Info("reaper started", "interval", r.reapEvery)
	for {
		select {
		case <-r.ctx.Done():
			r.log.V(1).Info("reaper stopped")
			return
		case <-ticker.C:
			if n := r.PurgeExpired(); n > 0 {
				r.log.V(1).Info("reaped expired entries", "count", n)
			}
		}
	}
}
