package calais

import (
	"encoding/json"
	"net/http"
	"strings"
)

// faultEnvelope is the body the service sends with 4xx/5xx statuses, whatever
// output format was requested.
type faultEnvelope struct {
	Fault *struct {
		FaultString string `json:"faultstring"`
	} `json:"fault"`
}

// classify turns anything but a clean 2xx response into an error.
func classify(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Fault:      statusText(resp),
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 600 {
		var env faultEnvelope
		if err := json.Unmarshal(resp.Body, &env); err == nil && env.Fault != nil && env.Fault.FaultString != "" {
			apiErr.Fault = env.Fault.FaultString
		}
	}

	return apiErr
}

func statusText(resp *Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(string(resp.Body))
}
