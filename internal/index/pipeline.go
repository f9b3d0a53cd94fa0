package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"dupescan/internal/chunker"
	"dupescan/internal/embedinput"
	"dupescan/internal/model"
	"dupescan/internal/walker"

	"golang.org/x/sync/errgroup"
)

// Stats reports indexing results.
type Stats struct {
	FilesTotal    int
	FilesIndexed  int // files that produced at least one chunk
	FilesUnparsed int
	ChunksTotal   int
}

// fileChunks is one file's extracted chunks.
type fileChunks struct {
	file   walker.File
	chunks []model.Chunk
}

// embeddedBatch has chunks with their embeddings ready to store.
type embeddedBatch struct {
	fileChunks
	embeddings [][]float32
}

// runPipeline fills dst: walk, then N chunking workers, then a single
// embedder, then a single store writer.
func (idx *Indexer) runPipeline(ctx context.Context, root string, dst *stores) (*Stats, error) {
	numWorkers := idx.config.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	var (
		stats      Stats
		filesTotal atomic.Int64
		unparsed   atomic.Int64
		queued     atomic.Int64
	)

	g, ctx := errgroup.WithContext(ctx)

	// Stage 1: Walk (only files with registered grammars)
	fileCh, walkErrCh := walker.Walk(ctx, root, walker.Options{
		Extensions: idx.registry.Extensions(),
		Ignore:     idx.config.Ignore,
	})

	// Stage 2: Read and chunk (N workers)
	chunkCh := make(chan fileChunks, numWorkers)
	var chunkWg sync.WaitGroup
	for range numWorkers {
		chunkWg.Add(1)
		g.Go(func() error {
			defer chunkWg.Done()
			for f := range fileCh {
				filesTotal.Add(1)

				src, err := os.ReadFile(f.Path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "warning: read %s: %v\n", f.RelPath, err)
					continue
				}

				chunks, err := idx.chunker.Chunk(f.RelPath, src, idx.config.Chunk)
				if err != nil {
					if !errors.Is(err, chunker.ErrSyntax) {
						return err
					}
					fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", f.RelPath, err)
					unparsed.Add(1)
					continue
				}
				if len(chunks) == 0 {
					continue
				}

				queued.Add(1)
				select {
				case chunkCh <- fileChunks{file: f, chunks: chunks}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		chunkWg.Wait()
		close(chunkCh)
	}()

	// Stage 3: Embed (1 worker, batches of BatchSize)
	embeddedCh := make(chan embeddedBatch, 4)
	g.Go(func() error {
		defer close(embeddedCh)

		for fc := range chunkCh {
			texts := make([]string, len(fc.chunks))
			for i, c := range fc.chunks {
				texts[i] = embedinput.Prepare(c, idx.config.Embed)
			}

			all := make([][]float32, 0, len(texts))
			for i := 0; i < len(texts); i += idx.config.BatchSize {
				end := min(i+idx.config.BatchSize, len(texts))
				embs, err := idx.embedder.Embed(ctx, texts[i:end])
				if err != nil {
					return fmt.Errorf("embed %s: %w", fc.file.RelPath, err)
				}
				if len(embs) != end-i {
					return fmt.Errorf("embed %s: expected %d embeddings, got %d", fc.file.RelPath, end-i, len(embs))
				}
				all = append(all, embs...)
			}

			select {
			case embeddedCh <- embeddedBatch{fileChunks: fc, embeddings: all}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	// Stage 4: Store (1 worker)
	g.Go(func() error {
		for eb := range embeddedCh {
			dst.add(eb.chunks, eb.embeddings)
			stats.FilesIndexed++
			if idx.config.OnProgress != nil {
				idx.config.OnProgress("Embedding chunks...", stats.FilesIndexed, int(queued.Load()))
			}
		}
		return nil
	})

	err := g.Wait()
	if walkErr := <-walkErrCh; walkErr != nil && err == nil {
		err = fmt.Errorf("walk %s: %w", root, walkErr)
	}

	stats.FilesTotal = int(filesTotal.Load())
	stats.FilesUnparsed = int(unparsed.Load())
	stats.ChunksTotal = dst.meta.Size()
	return &stats, err
}
