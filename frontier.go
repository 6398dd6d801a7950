package main

import (
	"container/heap"
)

// frontierEntry is one open-set entry. The same node may have several live entries.
type frontierEntry struct {
	NodeIndex int
	FScore    float64
	seq       uint64 // Insertion order, breaks fScore ties first-in first-out
}

// entryHeap implements heap.Interface ordered by fScore, then insertion order
type entryHeap []frontierEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].FScore != h[j].FScore {
		return h[i].FScore < h[j].FScore
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(frontierEntry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[0 : n-1]
	return entry
}

// PriorityFrontier is the A* open list. Re-inserting a node adds another entry rather
// than updating the old one; entries for nodes that are already closed are discarded
// when they reach the top.
type PriorityFrontier struct {
	entries  entryHeap
	isClosed func(nodeIndex int) bool
	nextSeq  uint64
}

// NewPriorityFrontier creates an empty frontier. isClosed may be nil if nothing is ever closed.
func NewPriorityFrontier(capacity int, isClosed func(nodeIndex int) bool) *PriorityFrontier {
	f := &PriorityFrontier{
		entries:  make(entryHeap, 0, capacity),
		isClosed: isClosed,
	}
	heap.Init(&f.entries)
	return f
}

// Push inserts or re-inserts a node with the given score
func (f *PriorityFrontier) Push(nodeIndex int, fScore float64) {
	heap.Push(&f.entries, frontierEntry{NodeIndex: nodeIndex, FScore: fScore, seq: f.nextSeq})
	f.nextSeq++
}

// Pop removes the live entry with the lowest score. ok is false once no live entries remain.
func (f *PriorityFrontier) Pop() (entry frontierEntry, ok bool) {
	for f.entries.Len() > 0 {
		entry = heap.Pop(&f.entries).(frontierEntry)
		if f.isClosed != nil && f.isClosed(entry.NodeIndex) {
			continue // Stale entry
		}
		return entry, true
	}
	return frontierEntry{}, false
}

// Len returns the number of queued entries, stale ones included
func (f *PriorityFrontier) Len() int {
	return f.entries.Len()
}

// IsEmpty reports whether no entries remain
func (f *PriorityFrontier) IsEmpty() bool {
	return f.entries.Len() == 0
}
