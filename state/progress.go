package state

import (
	"sync"

	"github.com/kilavvy/composer/core/traintime"
)

// Progress tracks the position of a training run in a thread-safe
// manner. Counters only ever advance; checkpoint restore replaces the
// whole Progress.
type Progress struct {
	mu sync.RWMutex

	epoch  traintime.Time
	batch  traintime.Time
	sample traintime.Time
	token  traintime.Time
}

// NewProgress creates a Progress at the start of a run.
func NewProgress() *Progress {
	return &Progress{
		epoch:  traintime.Epochs(0),
		batch:  traintime.Batches(0),
		sample: traintime.Samples(0),
		token:  traintime.Tokens(0),
	}
}

// RestoreProgress creates a Progress at an explicit position, used when
// resuming from a checkpoint.
func RestoreProgress(epoch, batch, sample, token traintime.Time) *Progress {
	return &Progress{epoch: epoch, batch: batch, sample: sample, token: token}
}

// AdvanceBatch records one optimization step over the given number of
// samples and tokens.
func (p *Progress) AdvanceBatch(samples, tokens int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batch = p.batch.Add(1)
	p.sample = p.sample.Add(samples)
	p.token = p.token.Add(tokens)
}

// AdvanceEpoch records a completed pass over the training set.
func (p *Progress) AdvanceEpoch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch = p.epoch.Add(1)
}

// Epoch returns the completed-epoch count.
func (p *Progress) Epoch() traintime.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.epoch
}

// Batch returns the completed-batch count.
func (p *Progress) Batch() traintime.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.batch
}

// Sample returns the consumed-sample count.
func (p *Progress) Sample() traintime.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sample
}

// Token returns the consumed-token count.
func (p *Progress) Token() traintime.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Timestamp returns the progress as the nested mapping stored in a
// state dict.
func (p *Progress) Timestamp() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return map[string]any{
		"epoch":  p.epoch,
		"batch":  p.batch,
		"sample": p.sample,
		"token":  p.token,
	}
}
