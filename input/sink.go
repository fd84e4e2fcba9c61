// Package input decodes inbound client input-event messages. Decoding is
// diagnostic only within the core: no injection is performed.
package input

import (
	"github.com/relaydesk/agent/common/errs"
	"github.com/relaydesk/agent/wire"
	"github.com/rs/zerolog/log"
)

// Handle decodes one inbound message by its leading tag byte and logs the
// resulting event. Unknown tags and short payloads are dropped silently
// (errs.ErrClientDecodeFailed), never disconnecting the client.
func Handle(clientID string, msg []byte) {
	if len(msg) < 1 {
		logDecodeFailed(clientID, "empty message")
		return
	}

	switch msg[0] {
	case wire.TagPointerMove:
		ev, err := wire.DecodePointerMove(msg)
		if err != nil {
			logDecodeFailed(clientID, err.Error())
			return
		}
		log.Debug().Str("client", clientID).Uint16("x", ev.X).Uint16("y", ev.Y).Msg("pointer move")

	case wire.TagPointerButton:
		ev, err := wire.DecodePointerButton(msg)
		if err != nil {
			logDecodeFailed(clientID, err.Error())
			return
		}
		log.Debug().Str("client", clientID).Uint8("button", ev.Button).Msg("pointer button")

	case wire.TagKey:
		ev, err := wire.DecodeKey(msg)
		if err != nil {
			logDecodeFailed(clientID, err.Error())
			return
		}
		log.Debug().Str("client", clientID).Uint16("key", ev.Code).Bool("pressed", ev.Pressed).Msg("key event")

	default:
		logDecodeFailed(clientID, "unknown tag")
	}
}

func logDecodeFailed(clientID, reason string) {
	log.Debug().Str("client", clientID).Str("reason", reason).
		Int32("code", errs.CodeClientDecodeFailed).Msg("client input decode failed")
}
