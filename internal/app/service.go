// Package service provides the mint orchestrator that implements the
// dependencies required by the HTTP API.
//
// One inbound request becomes one job on the shared worker pool. The pipeline
// per job is strictly sequential: fetch both logos (concurrently with each
// other), compose the canvas, publish the image, build the token document
// around the image's content address, publish the token, clean up. The token
// can never be built before the image's address is known.
package service

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matchmint/matchmint/internal/adapters/fetch"
	"github.com/matchmint/matchmint/internal/adapters/ipfs"
	"github.com/matchmint/matchmint/internal/adapters/mq/queue"
	"github.com/matchmint/matchmint/internal/adapters/mq/worker"
	"github.com/matchmint/matchmint/internal/domain/inflight"
	"github.com/matchmint/matchmint/internal/domain/model"
	"github.com/matchmint/matchmint/internal/domain/render"
	"github.com/matchmint/matchmint/internal/domain/token"
	"github.com/matchmint/matchmint/pkg/logger"
	"github.com/matchmint/matchmint/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize = 1024
	defaultGateway   = "https://ipfs.io"
)

// Fetcher downloads a remote asset into a local hash-named file.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Compositor renders the ticket canvas from two logo files.
type Compositor interface {
	Compose(homeLogoPath, guestLogoPath string, t *model.Ticket) (string, error)
}

// TokenWriter builds and writes the token document file.
type TokenWriter interface {
	Write(t *model.Ticket, imageURI string) (string, error)
}

// Publisher hands a byte stream to content-addressed storage.
type Publisher = ipfs.Publisher

// Service owns the mint pipeline and the worker pool that runs it.
type Service struct {
	mu sync.RWMutex

	// Core components
	fetcher    Fetcher
	compositor Compositor
	tokens     TokenWriter
	publisher  Publisher
	guard      *inflight.Registry
	jobQueue   queue.Queue
	pool       *worker.Pool

	// Configuration
	workDir     string
	gateway     string
	workerCount int
	queueSize   int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkerCount sets the number of mint workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the mint job queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkDir sets the directory all temporary files are written to.
func WithWorkDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.workDir = dir
		}
	}
}

// WithGateway sets the public gateway base for published content.
func WithGateway(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.gateway = base
		}
	}
}

// WithPublisher sets the storage client. Required before Start.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithFetcher replaces the asset fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithCompositor replaces the image compositor.
func WithCompositor(c Compositor) Option {
	return func(s *Service) {
		if c != nil {
			s.compositor = c
		}
	}
}

// WithTokenWriter replaces the token document writer.
func WithTokenWriter(w TokenWriter) Option {
	return func(s *Service) {
		if w != nil {
			s.tokens = w
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workDir:     os.TempDir(),
		gateway:     defaultGateway,
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes components and launches the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.publisher == nil {
		return ErrNoPublisher
	}
	if s.fetcher == nil {
		s.fetcher = fetch.New(fetch.WithWorkDir(s.workDir))
	}
	if s.compositor == nil {
		c, err := render.New(render.WithWorkDir(s.workDir))
		if err != nil {
			return err
		}
		s.compositor = c
	}
	if s.tokens == nil {
		s.tokens = token.New(token.WithWorkDir(s.workDir))
	}

	s.guard = inflight.New()
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.jobQueue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "mint service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("workDir", s.workDir),
	)
	return nil
}

// Stop gracefully shuts the service down: the queue stops accepting jobs,
// then workers drain and exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.jobQueue != nil {
		_ = s.jobQueue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(context.Background(), "mint service stopped")
}

// Submit enqueues a ticket for minting and blocks until the pipeline
// finishes or ctx ends. It returns the token document's gateway URL.
func (s *Service) Submit(ctx context.Context, t model.Ticket) (string, error) {
	s.mu.RLock()
	started, q := s.started, s.jobQueue
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	job := queue.Job{
		ID:     uuid.NewString(),
		Ticket: t,
		Reply:  make(chan queue.Result, 1),
	}
	if ok := q.Enqueue(ctx, job); !ok {
		return "", ErrBackpressure
	}

	select {
	case res := <-job.Reply:
		return res.TokenURI, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Mint runs one full pipeline. It implements worker.Minter and may also be
// called directly by tests.
func (s *Service) Mint(ctx context.Context, t *model.Ticket) (string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordMintLatency(float64(time.Since(start).Milliseconds()))
	}()

	// Serialize pipelines whose content digests collide: they would share
	// hash-named temporary paths.
	release := s.guard.Acquire(t.Hash())
	defer release()

	tmp := newTempSet(s.logger)
	defer tmp.sweep(ctx)

	homePath, guestPath, err := s.fetchLogos(ctx, t, tmp)
	if err != nil {
		metrics.RecordMintFailure(metrics.StageFetch)
		return "", err
	}

	imagePath, err := s.composeImage(t, homePath, guestPath, tmp)
	if err != nil {
		metrics.RecordMintFailure(metrics.StageCompose)
		return "", err
	}

	imageCID, err := s.publishFile(ctx, imagePath, metrics.StagePublishImage)
	if err != nil {
		metrics.RecordMintFailure(metrics.StagePublishImage)
		return "", err
	}
	tmp.remove(ctx, imagePath)

	tokenPath, err := s.buildToken(t, ipfs.GatewayURL(s.gateway, imageCID), tmp)
	if err != nil {
		metrics.RecordMintFailure(metrics.StageBuildToken)
		return "", err
	}

	tokenCID, err := s.publishFile(ctx, tokenPath, metrics.StagePublishToken)
	if err != nil {
		metrics.RecordMintFailure(metrics.StagePublishToken)
		return "", err
	}
	tmp.remove(ctx, tokenPath)

	metrics.RecordTicketMinted()
	return ipfs.GatewayURL(s.gateway, tokenCID), nil
}

// fetchLogos downloads both logos concurrently. Both must land before the
// compositor runs; a partial download is registered for cleanup either way.
func (s *Service) fetchLogos(ctx context.Context, t *model.Ticket, tmp *tempSet) (home, guest string, err error) {
	done := stageTimer(metrics.StageFetch)
	defer done()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.fetcher.Fetch(gctx, t.HostTeam.LogoURL)
		home = p
		return err
	})
	g.Go(func() error {
		p, err := s.fetcher.Fetch(gctx, t.GuestTeam.LogoURL)
		guest = p
		return err
	})
	err = g.Wait()

	tmp.add(home)
	tmp.add(guest)
	return home, guest, err
}

// composeImage renders the canvas and drops the logos, which are no longer
// needed regardless of what happens downstream.
func (s *Service) composeImage(t *model.Ticket, homePath, guestPath string, tmp *tempSet) (string, error) {
	done := stageTimer(metrics.StageCompose)
	defer done()

	imagePath, err := s.compositor.Compose(homePath, guestPath, t)

	ctx := context.Background()
	tmp.remove(ctx, homePath)
	tmp.remove(ctx, guestPath)

	if err != nil {
		return "", err
	}
	tmp.add(imagePath)
	return imagePath, nil
}

// buildToken writes the token document pointing at the published image.
func (s *Service) buildToken(t *model.Ticket, imageURI string, tmp *tempSet) (string, error) {
	done := stageTimer(metrics.StageBuildToken)
	defer done()

	tokenPath, err := s.tokens.Write(t, imageURI)
	if err != nil {
		return "", err
	}
	tmp.add(tokenPath)
	return tokenPath, nil
}

// publishFile streams a local file to the storage client.
func (s *Service) publishFile(ctx context.Context, path, stage string) (string, error) {
	done := stageTimer(stage)
	defer done()

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return s.publisher.Publish(ctx, f)
}

// stageTimer records a stage latency observation when the returned func runs.
func stageTimer(stage string) func() {
	start := time.Now()
	return func() {
		metrics.RecordStageLatency(stage, float64(time.Since(start).Milliseconds()))
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		queueLen := s.jobQueue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["inflight"] = s.guard.Len()
		stats["workers"] = s.pool.Size()

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}
