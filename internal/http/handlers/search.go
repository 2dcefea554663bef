package handlers

import (
	"strings"

	"github.com/valyala/fasthttp"

	dbpkg "eventlistener/internal/db"
)

// SearchEvents runs a case-insensitive substring search over the stored
// payload text. Blank keywords are rejected before the store is touched.
func SearchEvents(store dbpkg.EventStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		keyword := strings.TrimSpace(string(ctx.PostArgs().Peek("keyword")))
		if keyword == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, ErrKindValidation, "keyword must not be empty")
			return
		}

		events, err := store.Find(dbpkg.Filter{Keyword: keyword}, 0, 0)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to search events")
			return
		}

		jsonResponse(ctx, map[string]any{
			"keyword": keyword,
			"count":   len(events),
			"events":  events,
		})
	}
}
