// Package hub implements the protocol client for an ArduControl board.
//
// A Hub owns the Port and serializes all traffic on it: one exchange
// (purge, write frame, wait for ACK and optionally read an answer line)
// runs at a time. The Hub also holds the shared sequence state (step and
// frame counts, exposure, frame period, waits, loop frame, modulation
// enables) and pushes the derived step time whenever one of its inputs
// changes.
//
// Dependent endpoints (trigger selector, enable gate, output channels) talk
// to the board through Exchange, which runs a callback with the transport
// lock held so that a multi-frame update and the commit of its cached state
// are linearized with sequence-shape changes:
//
//	err := h.Exchange(func(s *hub.Session) error {
//		if err := s.Send(protocol.HeaderGate, payload); err != nil {
//			return err
//		}
//		ch.commitGate(open)
//		return nil
//	})
//
// Channels register as SequenceObservers. Every change of the sequence
// length, and every controller reset, calls ResetModulation on each of them
// while the transport lock is still held.
package hub
