package model

// Frame is a queued MAC payload awaiting transmission.
type Frame struct {
	Bytes int
	TID   uint8
	Retry bool
}

// CandidateEntry binds a station to the head-of-line frame that made it
// eligible for the current opportunity. Policies consume candidates in the
// order the selector produced them.
type CandidateEntry struct {
	Station *Station
	TID     uint8
	Frame   Frame
}

// QueueView is the coordinator's window into the per-station transmit queues
// owned by the MAC. Peeks never mutate queue state; Dequeue and
// AssignSequenceNumbers are called only once an assignment is committed.
type QueueView interface {
	// PeekHeadOfLine returns the first queued frame for the station and TID.
	PeekHeadOfLine(aid uint16, tid uint8) (Frame, bool)
	// PeekQueue returns a snapshot of all queued frames for the station and
	// TID, head first.
	PeekQueue(aid uint16, tid uint8) []Frame
	// Dequeue removes the first n frames for the station and TID.
	Dequeue(aid uint16, tid uint8, n int)
	// AssignSequenceNumbers allocates transmit sequence numbers for the first
	// n frames. Must only be called for frames that will actually be sent.
	AssignSequenceNumbers(aid uint16, tid uint8, n int)
}
