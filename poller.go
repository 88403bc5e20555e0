package zwcore

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const pollerBacklog = 200
const pollerWorkers = 4
const workerMaximumJobDuration = 15 * time.Second

type poller struct {
	fn       func(context.Context, NodeID) bool
	interval time.Duration

	pollerWork chan pollerWork
	pollerStop chan struct{}
	workers    *sync.WaitGroup

	lock       *sync.Mutex
	rand       *rand.Rand
	generation uint64
	scheduled  map[NodeID]uint64
}

// pollerWork carries the generation the id was scheduled under, work from an earlier
// generation of a removed and re-added id is discarded.
type pollerWork struct {
	id         NodeID
	generation uint64
}

func newPoller(interval time.Duration, fn func(context.Context, NodeID) bool) *poller {
	return &poller{
		fn:        fn,
		interval:  interval,
		workers:   &sync.WaitGroup{},
		lock:      &sync.Mutex{},
		scheduled: make(map[NodeID]uint64),
	}
}

func (p *poller) Start() {
	p.pollerStop = make(chan struct{})
	p.pollerWork = make(chan pollerWork, pollerBacklog)
	p.rand = rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < pollerWorkers; i++ {
		p.workers.Add(1)
		go p.worker()
	}
}

func (p *poller) Stop() {
	close(p.pollerStop)
	p.workers.Wait()
}

// Add schedules id for polling, the first poll is spread randomly across one interval. Adding
// an id which is already scheduled does nothing.
func (p *poller) Add(id NodeID) {
	p.lock.Lock()
	if _, found := p.scheduled[id]; found {
		p.lock.Unlock()
		return
	}

	p.generation++
	work := pollerWork{id: id, generation: p.generation}
	p.scheduled[id] = work.generation

	initialWait := time.Duration(float64(p.interval) * p.rand.Float64())
	p.lock.Unlock()

	p.after(initialWait, work)
}

// Remove drops id from the schedule, a pending poll of it is discarded.
func (p *poller) Remove(id NodeID) {
	p.lock.Lock()
	defer p.lock.Unlock()

	delete(p.scheduled, id)
}

func (p *poller) current(work pollerWork) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	generation, found := p.scheduled[work.id]
	return found && generation == work.generation
}

func (p *poller) after(wait time.Duration, work pollerWork) {
	time.AfterFunc(wait, func() {
		select {
		case p.pollerWork <- work:
		case <-p.pollerStop:
		}
	})
}

func (p *poller) worker() {
	defer p.workers.Done()

	for {
		select {
		case work := <-p.pollerWork:
			if !p.current(work) {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), workerMaximumJobDuration)

			if p.fn(ctx, work.id) {
				p.after(p.interval, work)
			} else {
				p.lock.Lock()
				if p.scheduled[work.id] == work.generation {
					delete(p.scheduled, work.id)
				}
				p.lock.Unlock()
			}

			cancel()
		case <-p.pollerStop:
			return
		}
	}
}
