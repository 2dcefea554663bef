package handlers

import (
	"net"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"gorm.io/datatypes"

	dbpkg "eventlistener/internal/db"
	"eventlistener/internal/extract"
)

// IngestHandler accepts one webhook notification, normalizes it and
// stores the resulting event record. The response body is the stored
// event id as plain text, which is what notification producers expect
// to see echoed back.
func IngestHandler(store dbpkg.EventStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		body := ctx.PostBody()
		if !json.Valid(body) {
			ingestErrorsTotal.WithLabelValues(ErrKindValidation).Inc()
			errResponse(ctx, fasthttp.StatusBadRequest, ErrKindValidation, "request body is not valid JSON")
			return
		}

		fields, err := extract.Extract(body, time.Now())
		if err != nil {
			ingestErrorsTotal.WithLabelValues(ErrKindExtraction).Inc()
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindExtraction, err.Error())
			return
		}

		rec := dbpkg.Event{
			EventID:         fields.ID,
			TimeStamp:       fields.TimeStamp,
			Type:            fields.Type,
			Topic:           fields.Topic,
			Facts:           fields.Facts,
			Geolocation:     fields.Geolocation,
			Payload:         datatypes.JSON(fields.Payload),
			CorrelationID:   fields.CorrelationID,
			ClientIPAddress: clientIP(ctx),
		}

		id, err := store.Insert(&rec)
		if err != nil {
			ingestErrorsTotal.WithLabelValues(ErrKindStorage).Inc()
			errResponse(ctx, fasthttp.StatusInternalServerError, ErrKindStorage, "failed to persist event")
			return
		}

		eventsIngestedTotal.WithLabelValues(rec.Topic).Inc()
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString(id)
	}
}

// clientIP prefers the first X-Forwarded-For entry, since the listener
// normally sits behind a proxy; the transport peer address is the
// fallback for direct connections.
func clientIP(ctx *fasthttp.RequestCtx) string {
	if xff := string(ctx.Request.Header.Peek("X-Forwarded-For")); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}

	addr := ctx.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
