package room

import "github.com/wfunc/spellchain/session"

// Broadcaster delivers one message to a set of sessions. Defined here so the
// room package does not depend on the concrete broadcast implementation.
type Broadcaster interface {
	Send(sessions []*session.Session, v interface{}) error
}
