package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// handleStream upgrades to a websocket and forwards every payload emitted on
// the event to the client as a JSON text message.
//
// The subscriber only enqueues; a slow client drops payloads instead of
// stalling Emit callers.
func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	log := s.opts.Logger.With().Str("event", name).Logger()

	queue := make(chan any, s.opts.StreamBuffer)
	sub, err := s.notifier.Subscribe(name, func(payload any) {
		select {
		case queue <- payload:
		default:
			log.Warn().Msg("stream queue full, dropping payload")
		}
	})
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	defer sub.Unsubscribe()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	// Clients never send; CloseRead handles control frames and cancels ctx
	// once the peer goes away.
	ctx := conn.CloseRead(r.Context())
	log.Debug().Msg("stream opened")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("stream closed")
			return
		case payload := <-queue:
			if err := writePayload(ctx, conn, payload); err != nil {
				log.Debug().Err(err).Msg("stream write failed")
				return
			}
		}
	}
}

func writePayload(ctx context.Context, conn *websocket.Conn, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}
