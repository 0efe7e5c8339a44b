// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"

	"github.com/wfunc/spellchain/logger"
	"github.com/wfunc/spellchain/session"
)

// JSON fans a server message out to a list of sessions, marshaling it once.
// A failed write to one client never blocks delivery to the others; the dead
// connection surfaces through its own read loop shortly after.
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (b *JSON) Send(sessions []*session.Session, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	for _, s := range sessions {
		if err := s.WriteLine(data); err != nil {
			logger.Log.Warnf("Failed to send message to session %s: %v", s.GetID(), err)
			continue
		}
	}
	return nil
}
