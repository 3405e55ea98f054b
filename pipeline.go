package spriter

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bodgit/spriter/manifest"
	"github.com/sirupsen/logrus"
)

type source struct {
	index int
	name  string
	path  string
}

type transcoded struct {
	source
	tiles []image.Image
	err   error
}

func stem(filename string) string {
	if s := strings.TrimSuffix(filename, filepath.Ext(filename)); s != "" {
		return s
	}
	return filename
}

// findSources returns every regular file in dir, following symlinks, sorted
// by filename.
func findSources(dir string) ([]source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var sources []source
	for _, entry := range entries {
		file := filepath.Join(dir, entry.Name())

		info, err := os.Stat(file)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		sources = append(sources, source{
			index: len(sources),
			name:  stem(entry.Name()),
			path:  file,
		})
	}

	return sources, nil
}

func generateSources(ctx context.Context, sources []source) <-chan source {
	out := make(chan source)
	go func() {
		defer close(out)
		for _, src := range sources {
			select {
			case out <- src:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func transcodeWorker(ctx context.Context, in <-chan source) <-chan transcoded {
	out := make(chan transcoded)
	go func() {
		defer close(out)
		for src := range in {
			tiles, err := transcode(src.path)
			select {
			case out <- transcoded{source: src, tiles: tiles, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func mergeResults(cs ...<-chan transcoded) <-chan transcoded {
	var wg sync.WaitGroup
	out := make(chan transcoded, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan transcoded) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// inOrder calls fn for each result in source order regardless of the order
// the workers finish in.
func inOrder(in <-chan transcoded, fn func(transcoded)) {
	pending := make(map[int]transcoded)
	next := 0
	for r := range in {
		pending[r.index] = r
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			fn(r)
			next++
		}
	}
}

// buildCategory packs every image of a category. The workers are stopped
// when it returns.
func (s *Spriter) buildCategory(root string, c Category, m *manifest.Manifest) {
	entries := m.Category(c.Name)
	logger := s.logger.WithField("category", c.Name)

	dir := filepath.Join(root, "img", c.Name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.record(m, &MissingCategoryError{Path: dir, Err: err})
		return
	}

	sources, err := findSources(dir)
	if err != nil {
		s.record(m, &MissingCategoryError{Path: dir, Err: err})
		return
	}

	logger.WithField("sources", len(sources)).Info("Packing category")

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	in := generateSources(ctx, sources)

	var results []<-chan transcoded
	for i := 0; i < s.workers; i++ {
		results = append(results, transcodeWorker(ctx, in))
	}

	p := newPacker(c)

	inOrder(mergeResults(results...), func(r transcoded) {
		if r.err != nil {
			s.record(m, r.err)
			return
		}

		if !utf8.ValidString(r.name) {
			// JSON replaces invalid bytes so distinct names may collide
			logger.WithField("path", r.path).Warn("Entity name is not valid UTF-8")
		}

		if entries.Set(r.name, p.place(r.name, r.tiles)) {
			logger.WithFields(logrus.Fields{
				"entity": r.name,
				"path":   r.path,
			}).Warn("Duplicate entity name replaces earlier image")
		}

		if p.full() {
			s.flush(root, p, entries, m)
		}
	})

	if !p.empty() {
		s.flush(root, p, entries, m)
	}
}
