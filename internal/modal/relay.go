package modal

import "log/slog"

// Relay hands entity from child to the nearest open ancestor that accepts
// entities, then closes the branch below that ancestor, child included.
// Any dialogs in between without an accept handler are closed as well.
//
// Relay returns false, and changes nothing, when child is no longer open or no
// ancestor accepts. Because the child is closed by the first successful relay,
// a repeated relay for the same child is a no-op.
func (s *Stack) Relay(child ID, entity Entity) bool {
	e, ok := s.entries[child]
	if !ok {
		s.log.Warn("relay to closed dialog ignored", slog.String("child", string(child)), slog.String("key", entity.Key))
		return false
	}

	branch := e
	target, ok := s.entries[e.Parent]
	for ok && target.onAccept == nil {
		branch = target
		target, ok = s.entries[target.Parent]
	}
	if !ok {
		s.log.Warn("relay has no accepting ancestor", slog.String("child", string(child)), slog.String("key", entity.Key))
		return false
	}

	// Close first so a re-entrant relay from inside the handler finds nothing.
	accept := target.onAccept
	s.Close(branch.ID)
	accept(entity)
	s.log.Info("entity relayed",
		slog.String("child", string(child)),
		slog.String("target", string(target.ID)),
		slog.String("key", entity.Key))
	return true
}

// Ticket ties an in-flight request to the dialog that issued it.
type Ticket struct {
	owner      ID
	generation uint64
}

// Owner returns the dialog that issued the request.
func (t Ticket) Owner() ID { return t.owner }

// BeginSubmit marks id as having a request in flight. It returns false when id
// is not open or already has a pending request, in which case the caller must
// not send another one.
func (s *Stack) BeginSubmit(id ID) (Ticket, bool) {
	e, ok := s.entries[id]
	if !ok || e.pending {
		return Ticket{}, false
	}
	e.pending = true
	return Ticket{owner: id, generation: e.generation}, true
}

// Settle clears the pending request for t. It reports whether the issuing
// dialog is still open; when it is not, the response must be dropped.
func (s *Stack) Settle(t Ticket) bool {
	e, ok := s.entries[t.owner]
	if !ok || e.generation != t.generation {
		s.log.Debug("response for closed dialog dropped", slog.String("owner", string(t.owner)))
		return false
	}
	e.pending = false
	return true
}

// Pending reports whether id has a request in flight.
func (s *Stack) Pending(id ID) bool {
	e, ok := s.entries[id]
	return ok && e.pending
}
