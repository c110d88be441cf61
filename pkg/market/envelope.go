package market

import (
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"
)

var emptyObject = json.RawMessage(`{}`)

// Envelope is the uniform provider result stored in the response cache.
type Envelope struct {
	OK     bool            `json:"ok" msgpack:"ok"`
	Status int             `json:"status" msgpack:"status"`
	Data   json.RawMessage `json:"data" msgpack:"data"`
}

// Success wraps a 200 payload.
func Success(body []byte) Envelope {
	return Envelope{OK: true, Status: http.StatusOK, Data: BodyOrEmpty(body)}
}

// Response wraps a raw upstream response, keeping its status.
func Response(status int, body []byte) Envelope {
	return Envelope{
		OK:     status >= http.StatusOK && status < http.StatusMultipleChoices,
		Status: status,
		Data:   BodyOrEmpty(body),
	}
}

// Failure builds a synthetic failed envelope with an {error, details} body.
func Failure(status int, msg string, details any) Envelope {
	payload := map[string]any{"error": msg}
	if details != nil {
		payload["details"] = details
	}
	data, err := json.Marshal(payload)
	if err != nil {
		data = emptyObject
	}
	return Envelope{OK: false, Status: status, Data: data}
}

// BodyOrEmpty returns body when it is valid JSON and {} otherwise.
func BodyOrEmpty(body []byte) json.RawMessage {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return emptyObject
	}
	out := make(json.RawMessage, len(body))
	copy(out, body)
	return out
}

// Result exposes the payload for path extraction.
func (e Envelope) Result() gjson.Result {
	if len(e.Data) == 0 {
		return gjson.Result{}
	}
	return gjson.ParseBytes(e.Data)
}

// Details decodes the payload for inclusion in an error response.
func (e Envelope) Details() any {
	if len(e.Data) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(e.Data, &out); err != nil {
		return string(e.Data)
	}
	return out
}
