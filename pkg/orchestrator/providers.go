package orchestrator

import (
	"context"
	"sync"

	"github.com/goliatone/go-qform/pkg/options"
	"github.com/goliatone/go-qform/pkg/questionnaire"
)

// resolver binds answerValueSet questions to remote providers. Each provider
// starts fetching as soon as it is created; group instances added after
// Build fetch in the background and render as loading until applied.
func (o *Orchestrator) resolver(fetches *pendingFetches) questionnaire.OptionsResolver {
	return func(item questionnaire.DefinitionItem) options.Provider {
		remote := options.NewRemote(item.AnswerValueSet, o.fetcher,
			options.WithCache(o.cache),
			options.WithLogger(o.logger),
		)
		ctx, cancel := context.WithTimeout(context.Background(), o.fetchTimeout)
		done := remote.Refresh(ctx)
		go func() {
			<-done
			cancel()
		}()
		fetches.add(done)
		return remote
	}
}

// pendingFetches collects the fetches started during one Build.
type pendingFetches struct {
	mu      sync.Mutex
	done    []<-chan struct{}
	total   int
	stopped bool
}

func (p *pendingFetches) add(done <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.done = append(p.done, done)
	p.total++
}

func (p *pendingFetches) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// stop ends collection; later fetches belong to instances added after Build.
func (p *pendingFetches) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.done = nil
}

func (p *pendingFetches) wait(ctx context.Context) error {
	p.mu.Lock()
	pending := append([]<-chan struct{}(nil), p.done...)
	p.mu.Unlock()

	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
