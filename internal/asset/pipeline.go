package asset

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Source produces a raw mesh payload. *Fetcher is the HTTP implementation.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Result is the outcome of one Load. Exactly one of Asset and Err is set.
type Result struct {
	Generation uint64
	Asset      *ParsedAsset
	Err        error
}

// Pipeline fetches and parses meshes off the caller's goroutine. Every Load is tagged with
// a strictly increasing generation; results are delivered on Results in completion order,
// which may differ from request order. The pipeline never touches scene state.
type Pipeline struct {
	source  Source
	parser  Parser
	log     *slog.Logger
	gen     atomic.Uint64
	results chan Result
}

// NewPipeline returns a pipeline reading from source and decoding with parser.
func NewPipeline(source Source, parser Parser, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		source:  source,
		parser:  parser,
		log:     log,
		results: make(chan Result, 8),
	}
}

// Results delivers completed loads.
func (p *Pipeline) Results() <-chan Result {
	return p.results
}

// Latest returns the generation of the most recent Load call, or 0 if none.
func (p *Pipeline) Latest() uint64 {
	return p.gen.Load()
}

// Load starts one fetch+parse and returns its generation immediately. The result is sent on
// Results unless ctx is cancelled first, in which case it is dropped. There is no retry.
func (p *Pipeline) Load(ctx context.Context) uint64 {
	gen := p.gen.Add(1)
	p.log.Debug("mesh load requested", "generation", gen)
	go func() {
		r := p.run(ctx, gen)
		select {
		case p.results <- r:
		case <-ctx.Done():
		}
	}()
	return gen
}

// LoadSync runs one fetch+parse on the calling goroutine.
func (p *Pipeline) LoadSync(ctx context.Context) (*ParsedAsset, error) {
	r := p.run(ctx, p.gen.Add(1))
	return r.Asset, r.Err
}

func (p *Pipeline) run(ctx context.Context, gen uint64) Result {
	payload, err := p.source.Fetch(ctx)
	if err != nil {
		return Result{Generation: gen, Err: err}
	}
	a, err := p.parser.Parse(payload)
	if err != nil {
		return Result{Generation: gen, Err: err}
	}
	a.Generation = gen
	return Result{Generation: gen, Asset: a}
}
