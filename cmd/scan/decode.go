package main

import (
	"context"
	"os"
	"sync"

	"github.com/Garik-/smf/pkg/midi"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type result struct {
	name string
	song *midi.Song
	err  error
}

func decodeFile(name string) *result {
	out := &result{name: name}
	f, err := os.Open(name)
	if err != nil {
		out.err = err
		return out
	}

	defer f.Close()

	decoder := midi.NewDecoder(f, midi.WithDecoderLogger(decoderLog.With(zap.String("name", name))))
	out.song, err = decoder.Decode()
	if err != nil {
		out.err = errors.Wrapf(err, "decode %s", name)
	}
	return out
}

// decodeWorker decodes paths with at most cntRoutines files in flight. done
// is signalled once every started decode has finished and results is closed.
func decodeWorker(ctx context.Context, paths <-chan string, cntRoutines int) (<-chan *result, <-chan struct{}) {
	log := decoderLog.Named("decodeWorker")
	results := make(chan *result)
	done := make(chan struct{})

	go func() {
		defer close(done)

		var wg sync.WaitGroup
		sem := make(chan struct{}, cntRoutines)

		defer func() {
			wg.Wait()
			close(results)
		}()

		for {
			var (
				path string
				ok   bool
			)
			select {
			case path, ok = <-paths:
				if !ok {
					return
				}
			case <-ctx.Done():
				log.Debug("stopped", zap.Error(ctx.Err()))
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				log.Debug("stopped", zap.Error(ctx.Err()))
				return
			}

			wg.Add(1)
			go func() {
				defer func() {
					<-sem
					wg.Done()
				}()

				r := decodeFile(path)
				select {
				case results <- r:
				case <-ctx.Done():
					log.Debug("dropped", zap.String("name", path))
				}
			}()
		}
	}()

	return results, done
}
