// Package fetch materializes batches of article handles. Fetching is
// best-effort: a handle whose download or parse fails is dropped from the
// result, the batch itself never fails.
package fetch

import (
	"context"
	"log"
	"sync"
)

// Article is anything that can be downloaded and then parsed. Both steps
// mutate the receiver in place.
type Article interface {
	Download(ctx context.Context) error
	Parse() error
}

// All attempts Download then Parse on every handle and returns the handles
// for which both succeeded, preserving their input order. With workers > 1
// the batch runs on a bounded pool; the drop semantics and ordering are the
// same as the sequential path. Cancelling ctx stops dispatching further
// handles, handles already materialized stay in the result.
func All[A Article](ctx context.Context, articles []A, workers int) []A {
	if len(articles) == 0 {
		return nil
	}

	kept := make([]bool, len(articles))

	if workers <= 1 {
		for i, article := range articles {
			if ctx.Err() != nil {
				break
			}
			kept[i] = materialize(ctx, article)
		}
	} else {
		jobs := make(chan int)

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					kept[i] = materialize(ctx, articles[i])
				}
			}()
		}

	dispatch:
		for i := range articles {
			select {
			case <-ctx.Done():
				break dispatch
			case jobs <- i:
			}
		}
		close(jobs)
		wg.Wait()
	}

	result := make([]A, 0, len(articles))
	for i, article := range articles {
		if kept[i] {
			result = append(result, article)
		}
	}
	return result
}

func materialize[A Article](ctx context.Context, article A) bool {
	if err := article.Download(ctx); err != nil {
		log.Printf("Skipping article (download): %v", err)
		return false
	}
	if err := article.Parse(); err != nil {
		log.Printf("Skipping article (parse): %v", err)
		return false
	}
	return true
}
