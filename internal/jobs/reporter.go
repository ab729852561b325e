package jobs

import "pdf-unwatermark/internal/domain"

// reporter marshals one run's emissions onto the controller loop, tagged
// with the run generation so stale deliveries can be dropped.
type reporter struct {
	controller *Controller
	generation uint64
}

func (r *reporter) progress(percent int) {
	_ = r.controller.loop.Post(func() { r.controller.applyProgress(r.generation, percent) })
}

func (r *reporter) status(status domain.StatusMessage) {
	_ = r.controller.loop.Post(func() { r.controller.applyStatus(r.generation, status) })
}

func (r *reporter) finish(result domain.ProcessingResult) {
	_ = r.controller.loop.Post(func() { r.controller.applyResult(r.generation, result) })
}
