package navigation

import "github.com/annel0/voxel-engine/internal/world"

// openSet - индексированная бинарная куча узлов поверх скретча арены.
// Порядок: F, затем порядковый номер вставки (FIFO среди равных).
type openSet struct {
	nav *world.NavScratch
	seq uint32
}

func (h *openSet) reset() {
	h.nav.Heap = h.nav.Heap[:0]
	h.seq = 0
}

func (h *openSet) len() int {
	return len(h.nav.Heap)
}

func (h *openSet) less(a, b int32) bool {
	fa, fb := h.nav.F[a], h.nav.F[b]
	if fa != fb {
		return fa < fb
	}
	return h.nav.Seq[a] < h.nav.Seq[b]
}

func (h *openSet) swap(i, j int) {
	heap := h.nav.Heap
	heap[i], heap[j] = heap[j], heap[i]
	h.nav.HeapIndex[heap[i]] = int32(i)
	h.nav.HeapIndex[heap[j]] = int32(j)
}

// push добавляет узел или поднимает его после уменьшения F
func (h *openSet) push(n int32) {
	h.seq++
	h.nav.Seq[n] = h.seq
	if i := h.nav.HeapIndex[n]; i >= 0 {
		// узел уже в куче: F строго уменьшился, достаточно всплытия
		h.up(int(i))
		return
	}
	h.nav.Heap = append(h.nav.Heap, n)
	i := len(h.nav.Heap) - 1
	h.nav.HeapIndex[n] = int32(i)
	h.up(i)
}

// pop извлекает узел с минимальным приоритетом
func (h *openSet) pop() int32 {
	heap := h.nav.Heap
	top := heap[0]
	last := len(heap) - 1
	h.swap(0, last)
	h.nav.Heap = heap[:last]
	h.nav.HeapIndex[top] = -1
	if last > 0 {
		h.down(0)
	}
	return top
}

func (h *openSet) up(i int) {
	heap := h.nav.Heap
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(heap[i], heap[parent]) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *openSet) down(i int) {
	heap := h.nav.Heap
	n := len(heap)
	for {
		smallest := i
		l, r := 2*i+1, 2*i+2
		if l < n && h.less(heap[l], heap[smallest]) {
			smallest = l
		}
		if r < n && h.less(heap[r], heap[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}
