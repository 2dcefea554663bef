package handlers

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
)

// Error kinds reported in structured error responses.
const (
	ErrKindValidation = "validation_error"
	ErrKindExtraction = "extraction_error"
	ErrKindStorage    = "storage_error"
	ErrKindNotFound   = "not_found"
)

type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// errResponse writes the structured error body every failure path uses.
func errResponse(ctx *fasthttp.RequestCtx, code int, kind, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(errorBody{
		Error:     kind,
		Message:   msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	ctx.SetBody(body)
}

func jsonResponse(ctx *fasthttp.RequestCtx, data map[string]any) {
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}
