package extract

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receiptTime = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

func TestExtract_HrefRoutingByTopic(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		facts    map[string]any
		wantHref string
		wantGeo  string
	}{
		{
			name:     "request topic uses facts.href",
			topic:    "public.concur.request",
			facts:    map[string]any{"href": "https://us.api.concursolutions.com/travelrequest/v4/requests/123"},
			wantHref: "https://us.api.concursolutions.com/travelrequest/v4/requests/123",
			wantGeo:  "US",
		},
		{
			name:     "expense report topic uses facts.href",
			topic:    "public.concur.expense.report",
			facts:    map[string]any{"href": "https://emea.api.concursolutions.com/expense/v4/reports/9"},
			wantHref: "https://emea.api.concursolutions.com/expense/v4/reports/9",
			wantGeo:  "EMEA",
		},
		{
			name:  "itinerary topic serializes facts.hrefs",
			topic: "public.concur.travel.itinerary",
			facts: map[string]any{"hrefs": []any{
				"https://us.api.concursolutions.com/travel/v4/trips/1",
				"https://us.api.concursolutions.com/travel/v4/trips/2",
			}},
			wantHref: `["https://us.api.concursolutions.com/travel/v4/trips/1","https://us.api.concursolutions.com/travel/v4/trips/2"]`,
			wantGeo:  "US",
		},
		{
			name:     "identity topic uses facts.userHref",
			topic:    "public.concur.user.profile.identity",
			facts:    map[string]any{"href": "https://decoy.example.com/x", "userHref": "https://cn.api.concurcdc.cn/profile/identity/v4/users/7"},
			wantHref: "https://cn.api.concurcdc.cn/profile/identity/v4/users/7",
			wantGeo:  "CN",
		},
		{
			name:     "provisioning topic uses facts.provisionStatusHref",
			topic:    "public.concur.user.provisioning",
			facts:    map[string]any{"provisionStatusHref": "https://us2.api.concursolutions.com/provisioning/v4/provisions/5/status"},
			wantHref: "https://us2.api.concursolutions.com/provisioning/v4/provisions/5/status",
			wantGeo:  "US2",
		},
		{
			name:     "accounting integration topic parses facts.data links",
			topic:    "public.concur.spend.accountingintegration",
			facts:    map[string]any{"data": `{"links":[{"href":"https://eu.api.concursolutions.com/accountingintegration/v4/docs/1"},{"href":"https://other"}]}`},
			wantHref: "https://eu.api.concursolutions.com/accountingintegration/v4/docs/1",
			wantGeo:  "EU",
		},
		{
			name:     "unknown topic falls back to facts.href",
			topic:    "public.concur.something.new",
			facts:    map[string]any{"href": "https://apac.api.concursolutions.com/x/y"},
			wantHref: "https://apac.api.concursolutions.com/x/y",
			wantGeo:  "APAC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(map[string]any{
				"id":    "e-1",
				"topic": tt.topic,
				"facts": tt.facts,
			})
			require.NoError(t, err)

			fields, err := Extract(body, receiptTime)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHref, fields.Href)
			assert.Equal(t, tt.wantGeo, fields.Geolocation)
		})
	}
}

func TestExtract_MissingNestedFieldsDoNotFail(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		facts string
	}{
		{"no facts at all", "public.concur.request", ``},
		{"empty facts", "public.concur.request", `"facts":{},`},
		{"hrefs absent", "public.concur.travel.itinerary", `"facts":{"other":1},`},
		{"userHref wrong type", "public.concur.user.profile.identity", `"facts":{"userHref":42},`},
		{"data absent", "public.concur.spend.accountingintegration", `"facts":{},`},
		{"data has no links", "public.concur.spend.accountingintegration", `"facts":{"data":"{\"foo\":1}"},`},
		{"data links element not an object", "public.concur.spend.accountingintegration", `"facts":{"data":"{\"links\":[3]}"},`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(`{"id":"a",` + tt.facts + `"topic":"` + tt.topic + `"}`)
			fields, err := Extract(body, receiptTime)
			require.NoError(t, err)
			assert.Empty(t, fields.Href)
			assert.Equal(t, GeoNotAvailable, fields.Geolocation)
		})
	}
}

func TestExtract_InvalidAccountingDataFails(t *testing.T) {
	body := []byte(`{"id":"a","topic":"public.concur.spend.accountingintegration","facts":{"data":"{not json"}}`)
	_, err := Extract(body, receiptTime)
	require.Error(t, err)

	var exErr *Error
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "facts.data", exErr.Field)
}

func TestExtract_PassThroughFields(t *testing.T) {
	body := []byte(`{
		"id": "3e5a-7b-9c",
		"topic": "public.concur.request",
		"eventType": "statusChanged",
		"correlationId": "corr-42",
		"timeStamp": "2026-03-10T01:02:03.456Z",
		"facts": {"href": "https://us.api.concursolutions.com/r/1", "status": "APPROVED"}
	}`)

	fields, err := Extract(body, receiptTime)
	require.NoError(t, err)

	assert.Equal(t, "3e5a7b9c", fields.ID, "dashes are stripped from the id")
	assert.Equal(t, "statusChanged", fields.Type)
	assert.Equal(t, "public.concur.request", fields.Topic)
	assert.Equal(t, "corr-42", fields.CorrelationID)
	assert.Equal(t, "2026-03-10T01:02:03.456", fields.TimeStamp)
}

func TestExtract_DefaultsWhenFieldsAbsent(t *testing.T) {
	fields, err := Extract([]byte(`{}`), receiptTime)
	require.NoError(t, err)

	assert.Empty(t, fields.ID)
	assert.Empty(t, fields.Type)
	assert.Empty(t, fields.Topic)
	assert.Empty(t, fields.CorrelationID)
	assert.Equal(t, "2026-03-15T09:30:00.000", fields.TimeStamp, "receipt time is used when the payload has no timestamp")
	assert.Equal(t, GeoNotAvailable, fields.Geolocation)
}

func TestNormalizeTimeStamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing Z dropped", "2026-03-10T01:02:03.456Z", "2026-03-10T01:02:03.456"},
		{"nanosecond precision truncated", "2026-03-10T01:02:03.456789123", "2026-03-10T01:02:03.456"},
		{"offset suffix truncated", "2026-03-10T01:02:03.456+08:00", "2026-03-10T01:02:03.456"},
		{"short value kept as-is", "2026-03-10T01:02:03", "2026-03-10T01:02:03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeTimeStamp(tt.in, receiptTime))
		})
	}
}

func TestGeolocation(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"simple host", "https://example.com/path", "EXAMPLE"},
		{"region label", "https://us2.api.concursolutions.com/v4/x", "US2"},
		{"empty href", "", "N/A"},
		{"no scheme separator", "example.com/path", "N/A"},
		{"no dot after host start", "https://localhost/path", "N/A"},
		{"dot immediately after separator", "https://.com", "N/A"},
		{"not a url at all", "garbage", "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Geolocation(tt.href))
		})
	}
}

func TestExtract_FactsArePrettyPrinted(t *testing.T) {
	body := []byte(`{"id":"a","topic":"public.concur.request","facts":{"href":"https://us.x.y/1","status":"SENTBACK"}}`)

	fields, err := Extract(body, receiptTime)
	require.NoError(t, err)

	assert.Contains(t, fields.Facts, "\n    \"href\"")
	assert.Contains(t, string(fields.Payload), "\n    \"id\"")

	var roundTrip map[string]any
	require.NoError(t, json.Unmarshal([]byte(fields.Facts), &roundTrip))
	assert.Equal(t, "SENTBACK", roundTrip["status"])
}
