// Package extract normalizes raw webhook notification payloads into the
// flat field set that gets persisted. Producers nest the canonical
// reference URL differently per topic, so href resolution is an explicit
// per-topic table rather than a heuristic.
package extract

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"eventlistener/internal/db"
)

// GeoNotAvailable is stored when no geolocation tag could be derived.
const GeoNotAvailable = "N/A"

const jsonIndent = "    "

// Error reports a structurally invalid nested document inside an
// otherwise well-formed payload (producer contract violation).
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fields is the normalized result of extracting one payload.
type Fields struct {
	ID            string
	TimeStamp     string
	Type          string
	Topic         string
	Facts         string
	Href          string
	Geolocation   string
	Payload       []byte
	CorrelationID string
}

type resolver func(facts map[string]any) (string, error)

// hrefResolvers maps each known topic to the nested field that carries
// the event subject's reference URL. Unknown topics use defaultHref.
var hrefResolvers = map[string]resolver{
	"public.concur.request":                     factsKey("href"),
	"public.concur.expense.report":              factsKey("href"),
	"public.concur.travel.itinerary":            itineraryHrefs,
	"public.concur.user.profile.identity":       factsKey("userHref"),
	"public.concur.user.provisioning":           factsKey("provisionStatusHref"),
	"public.concur.spend.accountingintegration": accountingLink,
}

var defaultHref = factsKey("href")

// Extract normalizes body into the stored field set. now supplies the
// receipt-time timestamp used when the payload carries none. body must
// already be known-valid JSON; missing fields are not an error, only an
// undecodable nested document is.
func Extract(body []byte, now time.Time) (*Fields, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Field: "payload", Err: err}
	}

	f := &Fields{
		ID:            strings.ReplaceAll(stringField(payload, "id"), "-", ""),
		Type:          stringField(payload, "eventType"),
		Topic:         stringField(payload, "topic"),
		CorrelationID: stringField(payload, "correlationId"),
		TimeStamp:     normalizeTimeStamp(stringField(payload, "timeStamp"), now),
	}

	facts, _ := payload["facts"].(map[string]any)
	f.Facts = prettyJSON(facts)
	f.Payload = []byte(prettyJSON(payload))

	resolve, ok := hrefResolvers[f.Topic]
	if !ok {
		resolve = defaultHref
	}
	href, err := resolve(facts)
	if err != nil {
		return nil, err
	}
	f.Href = href
	f.Geolocation = Geolocation(href)

	return f, nil
}

// Geolocation derives the uppercase first hostname label from href: the
// text between the first "//" and the next ".". This is a naming
// convention shortcut, not a DNS or geo lookup, and it never fails on
// malformed input; anything without the pattern yields GeoNotAvailable.
func Geolocation(href string) string {
	i := strings.Index(href, "//")
	if i < 0 {
		return GeoNotAvailable
	}
	rest := href[i+2:]
	j := strings.Index(rest, ".")
	if j <= 0 {
		return GeoNotAvailable
	}
	return strings.ToUpper(rest[:j])
}

// normalizeTimeStamp trusts the producer's timestamp when present so
// ordering reflects occurrence time rather than ingestion time. The
// value is cut down to the fixed-width millisecond layout; trailing
// zone markers and extra precision are dropped.
func normalizeTimeStamp(ts string, now time.Time) string {
	if ts == "" {
		return now.UTC().Format(db.TimeLayout)
	}
	ts = strings.TrimSuffix(ts, "Z")
	if len(ts) > len(db.TimeLayout) {
		ts = ts[:len(db.TimeLayout)]
	}
	return ts
}

func factsKey(key string) resolver {
	return func(facts map[string]any) (string, error) {
		if facts == nil {
			return "", nil
		}
		href, _ := facts[key].(string)
		return href, nil
	}
}

// itineraryHrefs serializes the whole facts.hrefs collection; itinerary
// events reference several segments rather than a single subject.
func itineraryHrefs(facts map[string]any) (string, error) {
	if facts == nil {
		return "", nil
	}
	hrefs, ok := facts["hrefs"]
	if !ok || hrefs == nil {
		return "", nil
	}
	out, err := json.Marshal(hrefs)
	if err != nil {
		return "", &Error{Field: "facts.hrefs", Err: err}
	}
	return string(out), nil
}

// accountingLink handles the accounting-integration topic, where
// facts.data is a JSON document encoded as a string. The href lives at
// links[0].href of the decoded document when present.
func accountingLink(facts map[string]any) (string, error) {
	if facts == nil {
		return "", nil
	}
	raw, ok := facts["data"].(string)
	if !ok || raw == "" {
		return "", nil
	}

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return "", &Error{Field: "facts.data", Err: err}
	}

	// Shape drift (no links, non-object elements) is tolerated and just
	// means no href; only undecodable JSON above is an error.
	obj, _ := data.(map[string]any)
	links, _ := obj["links"].([]any)
	if len(links) == 0 {
		return "", nil
	}
	first, _ := links[0].(map[string]any)
	href, _ := first["href"].(string)
	return href, nil
}

func stringField(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}

func prettyJSON(v any) string {
	if v == nil {
		return ""
	}
	out, err := json.MarshalIndent(v, "", jsonIndent)
	if err != nil {
		return ""
	}
	return string(out)
}
