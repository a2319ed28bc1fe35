package service

import (
	"context"
	"log"
	"sync"

	"github.com/rentride/geofence/module/core/domain"
)

type fixAcceptor interface {
	Accept(ctx context.Context, fix *domain.PositionFix) ([]domain.PositionFix, error)
	Flush(deviceID string) []domain.PositionFix
	Devices() []string
}

type geofenceLister interface {
	ListActiveFor(ctx context.Context, deviceID string) ([]domain.Geofence, error)
}

type transitionDispatcher interface {
	Dispatch(ctx context.Context, tr *domain.Transition) (*domain.Alert, error)
}

// Pipeline connects ingest -> evaluate -> track -> dispatch. Each device gets
// one worker goroutine fed by a buffered channel, so a device's fixes run
// strictly serially while different devices proceed in parallel. The only
// cross-device state is the geofence snapshot read, which is a single query
// per fix.
type Pipeline struct {
	ingest     fixAcceptor
	geofences  geofenceLister
	evaluator  *Evaluator
	tracker    *Tracker
	dispatcher transitionDispatcher
	bufSize    int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	submits map[string]*sync.Mutex
	workers map[string]chan domain.PositionFix
}

func NewPipeline(ingest fixAcceptor, geofences geofenceLister, evaluator *Evaluator, tracker *Tracker, dispatcher transitionDispatcher, bufSize int) *Pipeline {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Pipeline{
		ingest:     ingest,
		geofences:  geofences,
		evaluator:  evaluator,
		tracker:    tracker,
		dispatcher: dispatcher,
		bufSize:    bufSize,
		submits:    make(map[string]*sync.Mutex),
		workers:    make(map[string]chan domain.PositionFix),
	}
}

// Start makes the pipeline accept submissions until ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)
}

// Submit runs ingest acceptance synchronously, so rejections (stale,
// duplicate, inactive, invalid) surface to the caller, then queues the
// released fixes to the device's worker. The per-device submit lock keeps
// acceptance order and queue order identical.
func (p *Pipeline) Submit(ctx context.Context, fix *domain.PositionFix) error {
	lock := p.submitLock(fix.DeviceID)
	lock.Lock()
	defer lock.Unlock()

	released, err := p.ingest.Accept(ctx, fix)
	if err != nil {
		return err
	}

	ch := p.workerChan(fix.DeviceID)
	for _, r := range released {
		ch <- r
	}
	return nil
}

// Stop drains the reorder buffers, waits for every queued fix to be
// processed, and shuts the workers down.
func (p *Pipeline) Stop() {
	for _, deviceID := range p.ingest.Devices() {
		lock := p.submitLock(deviceID)
		lock.Lock()
		released := p.ingest.Flush(deviceID)
		if len(released) > 0 {
			ch := p.workerChan(deviceID)
			for _, r := range released {
				ch <- r
			}
		}
		lock.Unlock()
	}

	p.mu.Lock()
	for _, ch := range p.workers {
		close(ch)
	}
	p.workers = make(map[string]chan domain.PositionFix)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Pipeline) submitLock(deviceID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.submits[deviceID]
	if !ok {
		lock = &sync.Mutex{}
		p.submits[deviceID] = lock
	}
	return lock
}

func (p *Pipeline) workerChan(deviceID string) chan domain.PositionFix {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.workers[deviceID]
	if !ok {
		ch = make(chan domain.PositionFix, p.bufSize)
		p.workers[deviceID] = ch
		p.wg.Add(1)
		go p.runWorker(ch)
	}
	return ch
}

func (p *Pipeline) runWorker(ch <-chan domain.PositionFix) {
	defer p.wg.Done()
	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	for fix := range ch {
		p.process(ctx, fix)
	}
}

func (p *Pipeline) process(ctx context.Context, fix domain.PositionFix) {
	geofences, err := p.geofences.ListActiveFor(ctx, fix.DeviceID)
	if err != nil {
		log.Printf("geofence snapshot failed for %s, fix at %s skipped: %v",
			fix.DeviceID, fix.Timestamp, err)
		return
	}
	if len(geofences) == 0 {
		return
	}

	byID := make(map[string]*domain.Geofence, len(geofences))
	for i := range geofences {
		byID[geofences[i].ID] = &geofences[i]
	}

	for _, res := range p.evaluator.Evaluate(&fix, geofences) {
		tr := p.tracker.Observe(&fix, byID[res.GeofenceID], res.Inside)
		if tr == nil {
			continue
		}
		if _, err := p.dispatcher.Dispatch(ctx, tr); err != nil {
			log.Printf("dispatch failed for %s/%s %s: %v", tr.DeviceID, tr.GeofenceID, tr.Kind, err)
		}
	}
}
