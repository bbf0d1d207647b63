package engine

// History is a bounded FIFO of trade prices, oldest first. It is owned by
// the engine and guarded by the engine's lock.
type History struct {
	buf  []float64
	head int
	n    int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{buf: make([]float64, capacity)}
}

// Push appends p, evicting the oldest price once the buffer is full.
func (h *History) Push(p float64) {
	if h.n < len(h.buf) {
		h.buf[(h.head+h.n)%len(h.buf)] = p
		h.n++
		return
	}
	h.buf[h.head] = p
	h.head = (h.head + 1) % len(h.buf)
}

func (h *History) Len() int { return h.n }
func (h *History) Cap() int { return len(h.buf) }

// Values returns a copy of the prices, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, h.n)
	for i := 0; i < h.n; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

func (h *History) Last() (float64, bool) {
	if h.n == 0 {
		return 0, false
	}
	return h.buf[(h.head+h.n-1)%len(h.buf)], true
}
