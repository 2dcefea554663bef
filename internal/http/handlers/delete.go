package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/valyala/fasthttp"

	dbpkg "eventlistener/internal/db"
)

// DeleteEvent removes one event by its external id and sends the caller
// back to the list view.
func DeleteEvent(store dbpkg.EventStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id, ok := ctx.UserValue("eventId").(string)
		if !ok || id == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, ErrKindValidation, "eventId required")
			return
		}
		id = strings.ReplaceAll(id, "-", "")

		if err := store.DeleteByID(id); err != nil {
			if errors.Is(err, dbpkg.ErrEventNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, ErrKindNotFound, "event not found: "+id)
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to delete event")
			return
		}

		ctx.Redirect("/events", fasthttp.StatusSeeOther)
	}
}

// DeleteAllEvents clears the whole collection and sends the caller back
// to the list view.
func DeleteAllEvents(store dbpkg.EventStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		removed, err := store.DeleteAll()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to delete events")
			return
		}

		log.Printf("deleted all events (%d removed)", removed)
		ctx.Redirect("/events", fasthttp.StatusSeeOther)
	}
}
