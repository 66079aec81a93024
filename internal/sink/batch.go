package sink

// PendingBatch collects domains accepted since the last flush, in discovery order
type PendingBatch struct {
	items []string
}

func NewPendingBatch() *PendingBatch {
	return &PendingBatch{}
}

func (b *PendingBatch) Append(domains ...string) {
	b.items = append(b.items, domains...)
}

func (b *PendingBatch) Len() int {
	return len(b.items)
}

// Items returns a copy of the pending domains
func (b *PendingBatch) Items() []string {
	return append([]string(nil), b.items...)
}

// Reset empties the batch; only a successful flush calls it
func (b *PendingBatch) Reset() {
	b.items = b.items[:0]
}
