package stream

import (
	"log/slog"

	"github.com/vango-dev/livecoll/internal/errors"
	"github.com/vango-dev/livecoll/pkg/protocol"
)

// feed publishes the events of one collection to its clients. All fields
// are guarded by Server.mu; publish runs with it held because events are
// delivered synchronously inside pipeline calls.
type feed struct {
	name    string
	shape   protocol.Shape
	history *History
	clients map[*client]struct{}
	lastSeq uint64
	stop    func()
	logger  *slog.Logger
}

func newFeed(name string, shape protocol.Shape, historySize int, logger *slog.Logger) *feed {
	return &feed{
		name:    name,
		shape:   shape,
		history: NewHistory(historySize),
		clients: make(map[*client]struct{}),
		logger:  logger.With("collection", name),
	}
}

// publish encodes ev, records it and queues it for every client.
func (f *feed) publish(ev protocol.Event) {
	f.lastSeq = ev.Seq

	payload, err := protocol.EncodeEvent(&ev)
	if err != nil {
		// Clients would miss this event; make them reconnect and resync.
		f.logger.Error("event encode failed", "seq", ev.Seq, "error", errors.New("E164").Wrap(err))
		f.history.Clear()
		for c := range f.clients {
			c.stop(protocol.CloseError, "event could not be encoded")
		}
		return
	}
	f.history.Add(ev.Seq, payload)

	frame := protocol.NewFrame(protocol.FrameEvent, payload).Encode()
	for c := range f.clients {
		c.enqueue(frame)
	}
}

// resume returns the frames that bring a client that last saw event after
// up to date. replayed is false when a snapshot had to be sent instead.
func (f *feed) resume(after uint64, snapshot func() (*protocol.Snapshot, error)) (frames [][]byte, replayed bool, err error) {
	if after == f.lastSeq {
		return nil, true, nil
	}
	if after < f.lastSeq && f.history.MaxSeq() == f.lastSeq {
		if payloads, ok := f.history.Since(after); ok {
			for _, payload := range payloads {
				frame := &protocol.Frame{Type: protocol.FrameEvent, Flags: protocol.FlagReplay, Payload: payload}
				frames = append(frames, frame.Encode())
			}
			return frames, true, nil
		}
	}
	frame, err := f.snapshotFrame(snapshot, protocol.FlagResync)
	if err != nil {
		return nil, false, err
	}
	return [][]byte{frame}, false, nil
}

// snapshotFrame encodes the current content at the current sequence.
func (f *feed) snapshotFrame(snapshot func() (*protocol.Snapshot, error), flags protocol.FrameFlags) ([]byte, error) {
	s, err := snapshot()
	if err != nil {
		return nil, err
	}
	s.Seq = f.lastSeq
	frame, err := protocol.NewSnapshotFrame(s, flags)
	if err != nil {
		return nil, err
	}
	return frame.Encode(), nil
}
