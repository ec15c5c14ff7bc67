// Package queue provides an in-memory implementation of the transmit queue
// view. Production deployments adapt their MAC queues instead; this
// implementation backs tests and the standalone binary.
package queue

import (
	"sync"

	"github.com/axwifi/musched/core/model"
)

type key struct {
	aid uint16
	tid uint8
}

// Memory is a thread-safe in-memory frame queue keyed by station and TID.
type Memory struct {
	mu     sync.Mutex
	frames map[key][]model.Frame
	seqs   map[key]uint16
}

// NewMemory returns an empty queue set.
func NewMemory() *Memory {
	return &Memory{frames: make(map[key][]model.Frame), seqs: make(map[key]uint16)}
}

// Enqueue appends a frame to the station's per-TID queue.
func (m *Memory) Enqueue(aid uint16, f model.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{aid, f.TID}
	m.frames[k] = append(m.frames[k], f)
}

// PeekHeadOfLine implements model.QueueView.
func (m *Memory) PeekHeadOfLine(aid uint16, tid uint8) (model.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.frames[key{aid, tid}]
	if len(q) == 0 {
		return model.Frame{}, false
	}
	return q[0], true
}

// PeekQueue implements model.QueueView.
func (m *Memory) PeekQueue(aid uint16, tid uint8) []model.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.frames[key{aid, tid}]
	out := make([]model.Frame, len(q))
	copy(out, q)
	return out
}

// Dequeue implements model.QueueView.
func (m *Memory) Dequeue(aid uint16, tid uint8, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{aid, tid}
	q := m.frames[k]
	if n >= len(q) {
		delete(m.frames, k)
		return
	}
	m.frames[k] = q[n:]
}

// AssignSequenceNumbers implements model.QueueView.
func (m *Memory) AssignSequenceNumbers(aid uint16, tid uint8, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{aid, tid}
	m.seqs[k] += uint16(n)
}

// NextSequence returns the next sequence number that will be allocated for
// the station and TID.
func (m *Memory) NextSequence(aid uint16, tid uint8) uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seqs[key{aid, tid}]
}

// Len returns the number of queued frames for the station and TID.
func (m *Memory) Len(aid uint16, tid uint8) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames[key{aid, tid}])
}
