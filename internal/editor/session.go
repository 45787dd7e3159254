// Package editor runs live editing sessions. A session owns one page's block
// list wrapped in an undo history, applies commands one at a time, and streams
// change events to whoever is listening (the websocket handler, usually).
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nodepress/designer/internal/block"
	"github.com/nodepress/designer/internal/document"
	"github.com/nodepress/designer/internal/history"
	"github.com/nodepress/designer/internal/logging"
)

// EventType classifies session events.
type EventType string

const (
	// EventDocument carries the full block list after a successful command.
	EventDocument EventType = "document"
	// EventNoop is sent when undo/redo had nothing to step through.
	EventNoop EventType = "noop"
	// EventError reports a rejected command. The document is unchanged.
	EventError EventType = "error"
	// EventClosed is the final event before the channel closes.
	EventClosed EventType = "closed"
)

// Event is one message on a session's event stream.
type Event struct {
	SessionID string               `json:"session_id"`
	Seq       uint64               `json:"seq"`
	Type      EventType            `json:"type"`
	Command   CommandType          `json:"command,omitempty"`
	Blocks    []block.ContentBlock `json:"blocks,omitempty"`
	CanUndo   bool                 `json:"can_undo"`
	CanRedo   bool                 `json:"can_redo"`
	Error     string               `json:"error,omitempty"`
	At        time.Time            `json:"at"`
}

// Session is a single-writer editing session over one page. All mutations go
// through Apply, which serializes commands with a mutex so each command is
// atomic: it either fully applies or leaves the document untouched.
type Session struct {
	ID     string
	PageID string

	mu     sync.Mutex
	hist   *history.History[[]block.ContentBlock]
	seq    uint64
	closed bool

	// Events is buffered; slow consumers drop events rather than block the
	// editing loop. Closed when the session ends.
	events chan Event

	logger logging.Logger
}

func newSession(pageID string, blocks []block.ContentBlock, logger logging.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		ID:     id,
		PageID: pageID,
		hist:   history.New(blocks, block.CloneBlocks),
		events: make(chan Event, 16),
		logger: logger.With(
			logging.Field{Key: "session_id", Value: id},
			logging.Field{Key: "page_id", Value: pageID},
		),
	}
}

// Events returns the session's event stream. The channel is closed when the
// session is closed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Blocks returns a snapshot of the current document.
func (s *Session) Blocks() []block.ContentBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return block.CloneBlocks(s.hist.Present())
}

// Apply runs one command against the document. On success the returned event
// carries the new document; on failure the document is unchanged and the
// event describes the error. The same event is also emitted on the stream.
func (s *Session) Apply(cmd Command) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.errorEvent(cmd.Type, errors.New("session is closed"))
	}

	var ev Event
	switch cmd.Type {
	case CmdUndo:
		ev = s.step(cmd.Type, s.hist.Undo())
	case CmdRedo:
		ev = s.step(cmd.Type, s.hist.Redo())
	default:
		next, err := s.mutate(cmd)
		if err != nil {
			ev = s.errorEvent(cmd.Type, err)
		} else {
			s.hist.Set(next)
			ev = s.documentEvent(cmd.Type)
		}
	}

	s.emit(ev)
	return ev
}

// Sync replaces the document without recording history, for server-side loads
// (opening a page, restoring a revision) that must not be undoable.
func (s *Session) Sync(blocks []block.ContentBlock) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.errorEvent("", errors.New("session is closed"))
	}
	s.hist.Replace(blocks)
	ev := s.documentEvent("")
	s.emit(ev)
	return ev
}

// mutate computes the next document for an editing command. It works on a
// private copy so a failed command never leaks partial changes.
func (s *Session) mutate(cmd Command) ([]block.ContentBlock, error) {
	next := block.CloneBlocks(s.hist.Present())

	switch cmd.Type {
	case CmdAddBlock:
		out, _, err := document.Insert(next, cmd.BlockType, cmd.index(-1))
		return out, err

	case CmdRemoveBlock:
		return document.Remove(next, cmd.BlockID)

	case CmdMoveBlock:
		if cmd.Index == nil {
			return nil, errors.New("move requires an index")
		}
		return document.Move(next, cmd.BlockID, *cmd.Index)

	case CmdDuplicateBlock:
		out, _, err := document.Duplicate(next, cmd.BlockID)
		return out, err

	case CmdSetProps:
		props, err := s.decodeProps(next, cmd)
		if err != nil {
			return nil, err
		}
		if props == nil {
			return nil, errors.New("set_props requires a props payload")
		}
		if err := document.SetProps(next, cmd.BlockID, props); err != nil {
			return nil, err
		}
		return next, nil

	case CmdUpdateBlock:
		props, err := s.decodeProps(next, cmd)
		if err != nil {
			return nil, err
		}
		upd := document.BlockUpdate{
			Props:      props,
			Link:       cmd.Link,
			Visibility: cmd.Visibility,
			Animation:  cmd.Animation,
			Style:      cmd.Style,
		}
		if err := document.Update(next, cmd.BlockID, upd); err != nil {
			return nil, err
		}
		return next, nil

	case CmdSetLink:
		if err := document.SetLink(next, cmd.BlockID, cmd.Link); err != nil {
			return nil, err
		}
		return next, nil

	case CmdSetVisibility:
		if err := document.SetVisibility(next, cmd.BlockID, cmd.Visibility); err != nil {
			return nil, err
		}
		return next, nil

	case CmdSetAnimation:
		if err := document.SetAnimation(next, cmd.BlockID, cmd.Animation); err != nil {
			return nil, err
		}
		return next, nil

	case CmdSetStyle:
		if err := document.SetStyle(next, cmd.BlockID, cmd.Style); err != nil {
			return nil, err
		}
		return next, nil

	case CmdApplyTemplate:
		tpl, ok := document.LookupTemplate(cmd.TemplateID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", document.ErrTemplateNotFound, cmd.TemplateID)
		}
		return tpl.Instantiate(), nil

	case CmdReplaceBlocks:
		blocks := block.ImportBlocks(cmd.Blocks)
		if blocks == nil && !block.EmptyDocument(cmd.Blocks) {
			return nil, errors.New("malformed blocks payload")
		}
		return blocks, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

// decodeProps turns a command's raw props into the typed property set of the
// target block. The target's type picks the concrete struct, so a payload can
// never change a block's type.
func (s *Session) decodeProps(blocks []block.ContentBlock, cmd Command) (block.Props, error) {
	if len(cmd.Props) == 0 {
		return nil, nil
	}
	target := document.FindByID(blocks, cmd.BlockID)
	if target == nil {
		return nil, fmt.Errorf("%w: %s", document.ErrBlockNotFound, cmd.BlockID)
	}
	def, ok := block.Lookup(target.Type)
	if !ok {
		return nil, fmt.Errorf("no definition for block type %q", target.Type)
	}
	props := def.NewProps()
	if err := json.Unmarshal(cmd.Props, props); err != nil {
		return nil, fmt.Errorf("decode %s props: %w", target.Type, err)
	}
	return props, nil
}

func (s *Session) step(cmd CommandType, stepped bool) Event {
	if !stepped {
		s.seq++
		return Event{
			SessionID: s.ID,
			Seq:       s.seq,
			Type:      EventNoop,
			Command:   cmd,
			CanUndo:   s.hist.CanUndo(),
			CanRedo:   s.hist.CanRedo(),
			At:        time.Now().UTC(),
		}
	}
	return s.documentEvent(cmd)
}

func (s *Session) documentEvent(cmd CommandType) Event {
	s.seq++
	return Event{
		SessionID: s.ID,
		Seq:       s.seq,
		Type:      EventDocument,
		Command:   cmd,
		Blocks:    block.CloneBlocks(s.hist.Present()),
		CanUndo:   s.hist.CanUndo(),
		CanRedo:   s.hist.CanRedo(),
		At:        time.Now().UTC(),
	}
}

func (s *Session) errorEvent(cmd CommandType, err error) Event {
	s.seq++
	s.logger.Warn("command rejected",
		logging.Field{Key: "command", Value: string(cmd)},
		logging.Field{Key: "error", Value: err.Error()})
	return Event{
		SessionID: s.ID,
		Seq:       s.seq,
		Type:      EventError,
		Command:   cmd,
		CanUndo:   s.hist.CanUndo(),
		CanRedo:   s.hist.CanRedo(),
		Error:     err.Error(),
		At:        time.Now().UTC(),
	}
}

// emit delivers an event without ever blocking the editing loop.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("event dropped, consumer too slow",
			logging.Field{Key: "seq", Value: ev.Seq})
	}
}

// close ends the session and closes the event stream.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.seq++
	ev := Event{
		SessionID: s.ID,
		Seq:       s.seq,
		Type:      EventClosed,
		At:        time.Now().UTC(),
	}
	select {
	case s.events <- ev:
	default:
	}
	close(s.events)
}
