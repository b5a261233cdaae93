package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// DefaultConcurrency is the number of pages processed at once when no
// limit is configured.
const DefaultConcurrency = 3

// Job carries one fetched URL through the content phase. Steps fill the
// fields in order: the fetch step produces the document, the organize
// step the placement.
type Job struct {
	// URL is the normalized URL to process.
	URL string

	// Depth is the hop distance the URL was discovered at.
	Depth int

	// Document is the extracted content, set by the fetch step.
	Document *model.CrawledDocument

	// Placement is the resolved destination, set by the organize step.
	Placement *model.Placement
}

// Step is one stage of the content phase.
//
// Steps are executed in sequence per job; a step error stops that job's
// remaining steps but never the processor. Errors that only concern a
// single page should still be returned so the job is reported failed.
type Step interface {
	// Do executes the step, mutating the job in place.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Processor runs jobs through an ordered list of steps with bounded
// concurrency. Submit blocks while the limit is reached, so a fast
// discovery phase cannot queue unbounded work.
type Processor struct {
	// steps contains the ordered list of steps each job runs through.
	steps []Step

	// concurrency is the maximum number of jobs in flight.
	concurrency int

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// onError is called when a step fails a job.
	onError func(job *Job, err error)

	// onDone is called when a job completes every step.
	onDone func(job *Job)

	g   *errgroup.Group
	ctx context.Context
}

// Option is a function that configures a Processor.
type Option func(*Processor)

// WithLogger sets a custom logger for the processor.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithConcurrency sets the maximum number of jobs in flight.
// Values below one are ignored.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithOnError sets a callback invoked when a step fails a job. The
// callback runs on the job's goroutine and must be safe for concurrent
// use.
func WithOnError(fn func(job *Job, err error)) Option {
	return func(p *Processor) {
		p.onError = fn
	}
}

// WithOnDone sets a callback invoked when a job completes every step.
// The callback runs on the job's goroutine and must be safe for
// concurrent use.
func WithOnDone(fn func(job *Job)) Option {
	return func(p *Processor) {
		p.onDone = fn
	}
}

// New creates a new Processor with the given options.
// Steps should be added using AddStep before Start.
func New(opts ...Option) *Processor {
	p := &Processor{
		steps:       make([]Step, 0),
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the processor.
// Steps run in the order they are added.
func (p *Processor) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the processor.
func (p *Processor) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Start prepares the processor to accept jobs under ctx.
// It must be called before Submit.
func (p *Processor) Start(ctx context.Context) {
	p.g, p.ctx = errgroup.WithContext(ctx)
	p.g.SetLimit(p.concurrency)
}

// Submit schedules one URL for processing. It blocks while the
// concurrency limit is reached. A job whose step fails is logged and
// reported through the error callback; it never stops other jobs.
func (p *Processor) Submit(url string, depth int) {
	p.g.Go(func() error {
		job := &Job{URL: url, Depth: depth}

		select {
		case <-p.ctx.Done():
			p.fail(job, p.ctx.Err())
			return nil
		default:
		}

		for _, step := range p.steps {
			p.logger.Debug("executing step", "step", step.Name(), "url", job.URL)

			if err := step.Do(p.ctx, job); err != nil {
				p.logger.Warn("step failed",
					"step", step.Name(),
					"url", job.URL,
					"error", err,
				)
				p.fail(job, err)
				return nil
			}
		}

		if p.onDone != nil {
			p.onDone(job)
		}
		return nil
	})
}

// Wait blocks until every submitted job has finished.
func (p *Processor) Wait() error {
	return p.g.Wait()
}

func (p *Processor) fail(job *Job, err error) {
	if p.onError != nil {
		p.onError(job, err)
	}
}

// StepCount returns the number of steps in the processor.
func (p *Processor) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Processor) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
