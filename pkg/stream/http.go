package stream

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/vango-dev/livecoll/internal/errors"
	"github.com/vango-dev/livecoll/pkg/pipeline"
	"github.com/vango-dev/livecoll/pkg/protocol"
)

// CollectionInfo describes one published collection.
type CollectionInfo struct {
	Name    string         `json:"name"`
	Kind    string         `json:"kind"`
	Shape   protocol.Shape `json:"shape"`
	Len     int            `json:"len"`
	Seq     uint64         `json:"seq"`
	Clients int            `json:"clients"`
}

// OpsResult is the response of POST /ops.
type OpsResult struct {
	Applied int `json:"applied"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	infos := make([]CollectionInfo, 0, len(s.feeds))
	for _, name := range s.pipeline.Names() {
		f := s.feeds[name]
		kind, _ := s.pipeline.Kind(name)
		n, _ := s.pipeline.Len(name)
		infos = append(infos, CollectionInfo{
			Name:    name,
			Kind:    kind,
			Shape:   f.shape,
			Len:     n,
			Seq:     f.lastSeq,
			Clients: len(f.clients),
		})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	snapshot, err := s.pipeline.Snapshot(name)
	if err == nil {
		snapshot.Seq = s.feeds[name].lastSeq
	}
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxOpBody))
	if err != nil {
		writeError(w, errors.New("E121").WithDetail("Request body could not be read").Wrap(err))
		return
	}
	ops, err := pipeline.ParseOps(body)
	if err != nil {
		writeError(w, err)
		return
	}

	var claims *Claims
	if s.auth != nil {
		token := requestToken(r)
		if token == "" {
			writeError(w, errors.New("E162").WithSuggestion("Send an Authorization: Bearer header"))
			return
		}
		if claims, err = s.auth.Verify(token); err != nil {
			writeError(w, errors.New("E162").Wrap(err))
			return
		}
	}
	if _, err := s.authorize(claims, ops); err != nil {
		writeError(w, err)
		return
	}

	applied, err := s.applyOps(r.Context(), ops)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OpsResult{Applied: applied})
}

// handleWebSocket upgrades the request and follows one collection. The
// client first receives a snapshot, or with ?after=<seq> the events it
// missed when they are still in history.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.pipeline.Kind(name); !ok {
		writeError(w, errors.New("E120").WithDetailf("No collection named %q", name).Wrap(pipeline.ErrUnknownCollection))
		return
	}

	var after uint64
	resuming := false
	if raw := r.URL.Query().Get("after"); raw != "" {
		seq, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, errors.New("E140").WithDetailf("after=%q is not a sequence number", raw))
			return
		}
		after, resuming = seq, true
	}

	var claims *Claims
	if s.auth != nil {
		if token := requestToken(r); token != "" {
			var err error
			if claims, err = s.auth.Verify(token); err != nil {
				writeError(w, errors.New("E162").Wrap(err))
				return
			}
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", errors.New("E160").Wrap(err))
		s.recordWSError("upgrade")
		return
	}

	c := &client{
		id:     ulid.Make().String(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, s.sendQueue),
		claims: claims,
		done:   make(chan struct{}),
	}
	c.logger = s.logger.With("client", c.id, "collection", name)

	s.mu.Lock()
	f := s.feeds[name]
	snapshot := func() (*protocol.Snapshot, error) { return s.pipeline.Snapshot(name) }
	if resuming {
		var replayed bool
		c.initial, replayed, err = f.resume(after, snapshot)
		if s.metrics != nil && err == nil {
			outcome := "snapshot"
			if replayed {
				outcome = "replayed"
			}
			s.metrics.RecordResume(outcome)
		}
	} else {
		var frame []byte
		frame, err = f.snapshotFrame(snapshot, 0)
		c.initial = [][]byte{frame}
	}
	if err == nil {
		f.clients[c] = struct{}{}
	}
	s.mu.Unlock()

	if err != nil {
		c.logger.Error("initial snapshot failed", "error", err)
		c.write(protocol.NewFatalError(protocol.ErrServerError, errors.New("E164").Wrap(err).Error()).Frame().Encode())
		conn.Close()
		return
	}

	if s.metrics != nil {
		s.metrics.RecordClientConnect()
	}
	c.logger.Info("client connected", "resume", resuming, "after", after)

	writerDone := make(chan struct{})
	go func() {
		c.writeLoop()
		close(writerDone)
	}()
	c.readLoop()

	s.mu.Lock()
	delete(f.clients, c)
	s.mu.Unlock()
	<-writerDone

	if s.metrics != nil {
		s.metrics.RecordClientDisconnect()
	}
	c.logger.Info("client disconnected", "reason", c.closeReason.String())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes err as a JSON coded error with a matching status.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case stderrors.Is(err, pipeline.ErrUnknownCollection):
		status = http.StatusNotFound
	case stderrors.Is(err, pipeline.ErrKindMismatch):
		status = http.StatusConflict
	case stderrors.Is(err, pipeline.ErrInvalidOp):
		status = http.StatusBadRequest
	}
	switch errors.Code(err) {
	case "E162":
		status = http.StatusUnauthorized
	case "E121", "E140":
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errors.FromError(err, "E142"))
}
