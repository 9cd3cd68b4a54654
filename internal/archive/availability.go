package archive

import (
	"context"
	"io"
	"sync"

	"github.com/Zuo-Peng/waview/internal/transcript"
)

const maxWorkers = 4

// Availability opens each named attachment and reports whether it could be
// read. Lookups run concurrently; the archive is only read. Each reader is
// closed before the worker moves on.
func Availability(ctx context.Context, a transcript.Archive, names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	if a == nil {
		for _, n := range names {
			out[n] = false
		}
		return out
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan string)

	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				ok := probe(a, name)
				mu.Lock()
				out[name] = ok
				mu.Unlock()
			}
		}()
	}

feed:
	for _, n := range names {
		select {
		case jobs <- n:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return out
}

func probe(a transcript.Archive, name string) bool {
	rc, err := a.Open(name)
	if err != nil {
		return false
	}
	defer rc.Close()
	_, err = io.CopyN(io.Discard, rc, 1)
	return err == nil || err == io.EOF
}

// WithAttachment opens name, hands it to fn, and always closes it.
func WithAttachment(a transcript.Archive, name string, fn func(io.Reader) error) error {
	if a == nil {
		return ErrMediaUnavailable
	}
	rc, err := a.Open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	return fn(rc)
}
