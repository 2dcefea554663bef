package handlers

import (
	"errors"
	"strings"

	"github.com/valyala/fasthttp"

	dbpkg "eventlistener/internal/db"
)

// EventDetail looks up a single event by its external id. Dashes are
// stripped from the parameter because ids are stored dash-free while
// producers link to them in UUID form.
func EventDetail(store dbpkg.EventStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := ctx.UserValue("eventId").(string)
		if !ok || id == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, ErrKindValidation, "eventId required")
			return
		}
		id = strings.ReplaceAll(id, "-", "")

		ev, err := store.FindByID(id)
		if err != nil {
			if errors.Is(err, dbpkg.ErrEventNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, ErrKindNotFound, "event not found: "+id)
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to load event")
			return
		}

		jsonResponse(ctx, map[string]any{
			"id":              ev.EventID,
			"timeStamp":       ev.TimeStamp,
			"type":            ev.Type,
			"topic":           ev.Topic,
			"facts":           ev.Facts,
			"geolocation":     ev.Geolocation,
			"payload":         ev.Payload,
			"correlationId":   ev.CorrelationID,
			"clientIpAddress": ev.ClientIPAddress,
		})
	}
}
