package reconcile

import (
	"context"
	"log"
	"time"
)

// Worker runs the sweep on a fixed interval until its context is canceled.
type Worker struct {
	uc       *Usecase
	interval time.Duration
}

func NewWorker(uc *Usecase, interval time.Duration) *Worker {
	return &Worker{uc: uc, interval: interval}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	log.Printf("reconcile: worker started, interval %s", w.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("reconcile: worker stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			sum, err := w.uc.Sweep(ctx)
			if err != nil {
				log.Printf("reconcile: sweep failed: %v", err)
				continue
			}
			if sum.Swept > 0 {
				log.Printf("reconcile: %s", sum)
			}
		}
	}
}
