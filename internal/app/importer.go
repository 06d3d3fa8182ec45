package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_service/internal/domain"
)

type ImportReport struct {
	Created []domain.Hotel
	Failed  int
}

// ImportHotels creates every hotel through svc with at most workers calls in
// flight. Individual failures are logged and counted, not returned; the
// error is non-nil only when ctx ends before all hotels were scheduled.
func ImportHotels(ctx context.Context, svc *HotelService, hotels []domain.Hotel, workers int) (ImportReport, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		failed  atomic.Int64
		created = make([]domain.Hotel, 0, len(hotels))
	)

	var schedErr error
	for i, h := range hotels {
		// acquire before launching the goroutine; release inside it
		err := ctx.Err()
		if err == nil {
			err = sem.Acquire(ctx, 1)
		}
		if err != nil {
			schedErr = err
			failed.Add(int64(len(hotels) - i))
			break
		}

		wg.Add(1)
		go func(h domain.Hotel) {
			defer wg.Done()
			defer sem.Release(1)

			out, err := svc.CreateHotel(ctx, h)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("title", h.Title).Err(err).Msg("import failed")
				return
			}
			mu.Lock()
			created = append(created, out)
			mu.Unlock()
			log.Debug().Int64("id", out.ID).Msg("import ok")
		}(h)
	}

	wg.Wait()
	return ImportReport{Created: created, Failed: int(failed.Load())}, schedErr
}
