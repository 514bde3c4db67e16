// Package batch groups recognized word groups into bounded text batches.
package batch

import (
	"strings"
	"sync"

	"github.com/ByLCY/quill/queue"
)

// DefaultThreshold is the word count that closes a batch.
const DefaultThreshold = 20

// TextBatch is a non-empty run of words handed to the pipeline.
type TextBatch string

// Batcher buffers word groups until the threshold is reached or the
// speaker goes silent. It is safe for concurrent use.
type Batcher struct {
	threshold int
	out       *queue.Queue[TextBatch]

	mu     sync.Mutex
	groups []string
	words  int
}

// New returns a batcher that pushes finished batches to out. A threshold
// below one falls back to DefaultThreshold.
func New(threshold int, out *queue.Queue[TextBatch]) *Batcher {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Batcher{threshold: threshold, out: out}
}

// Text appends one recognized group. Blank groups are ignored.
func (b *Batcher) Text(group string) {
	group = strings.TrimSpace(group)
	if group == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups = append(b.groups, group)
	b.words += len(strings.Fields(group))
	if b.words >= b.threshold {
		b.flushLocked()
	}
}

// Silence closes the current batch regardless of its size.
func (b *Batcher) Silence() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

// Flush pushes whatever is buffered. Used on shutdown.
func (b *Batcher) Flush() { b.Silence() }

// Pending returns the number of buffered words.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.words
}

func (b *Batcher) flushLocked() {
	if len(b.groups) == 0 {
		return
	}
	text := strings.Join(strings.Fields(strings.Join(b.groups, " ")), " ")
	b.groups = b.groups[:0]
	b.words = 0
	b.out.Push(TextBatch(text))
}
