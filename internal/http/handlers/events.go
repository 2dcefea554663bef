package handlers

import (
	"strconv"

	"github.com/valyala/fasthttp"

	dbpkg "eventlistener/internal/db"
	"eventlistener/internal/retention"
)

// PageSize is the fixed number of events per page on the paginated list.
const PageSize = 10

// ListEvents returns all events, newest first, optionally narrowed to
// one topic via the eventTopic query parameter. List views also nudge
// the retention sweeper so old records get purged even when the daily
// worker was interrupted by a restart.
func ListEvents(store dbpkg.EventStore, sweeper *retention.Sweeper) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		go sweeper.Trigger()

		filter := dbpkg.Filter{Topic: string(ctx.QueryArgs().Peek("eventTopic"))}
		events, err := store.Find(filter, 0, 0)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to load events")
			return
		}

		jsonResponse(ctx, map[string]any{
			"count":  len(events),
			"events": events,
		})
	}
}

// ListEventsPage serves one fixed-size page of the full list. A missing
// or unparseable page number falls back to page 1.
func ListEventsPage(store dbpkg.EventStore, sweeper *retention.Sweeper) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		go sweeper.Trigger()

		page := 1
		if v, ok := ctx.UserValue("page").(string); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				page = n
			}
		}

		total, err := store.Count(dbpkg.Filter{})
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to count events")
			return
		}
		pages := int((total + PageSize - 1) / PageSize)

		events, err := store.Find(dbpkg.Filter{}, (page-1)*PageSize, PageSize)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to load events")
			return
		}

		jsonResponse(ctx, map[string]any{
			"page":   page,
			"pages":  pages,
			"total":  total,
			"events": events,
		})
	}
}
