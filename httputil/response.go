package httputil

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

type errorBody struct {
	Status      int    `json:"status"`
	SubStatus   int    `json:"subStatus"`
	UserMessage string `json:"userMessage"`
}

const (
	subStatusTokenInvalid  = 11002
	subStatusTokenExpired  = 11003
	subStatusSessionNotFnd = 6001
)

func IsTokenExpiredResponse(b []byte) (bool, error) {
	var body errorBody
	if err := json.Unmarshal(b, &body); nil != err {
		return false, fmt.Errorf("failed to decode 401 status code response body: %v", err)
	}

	return body.Status == http.StatusUnauthorized && body.SubStatus == subStatusTokenExpired, nil
}

func IsTokenInvalidResponse(b []byte) (bool, error) {
	var body errorBody
	if err := json.Unmarshal(b, &body); nil != err {
		return false, fmt.Errorf("failed to decode 401 status code response body: %v", err)
	}

	return body.Status == http.StatusUnauthorized && body.SubStatus == subStatusTokenInvalid, nil
}

func IsSessionNotFoundResponse(b []byte) (bool, error) {
	var body errorBody
	if err := json.Unmarshal(b, &body); nil != err {
		return false, fmt.Errorf("failed to decode 401 status code response body: %v", err)
	}

	return body.Status == http.StatusUnauthorized && body.SubStatus == subStatusSessionNotFnd, nil
}

// IsQueueItUpResponse reports whether a 403 response is the edge rate limiter
// asking the client to back off. The body is not JSON in that case.
func IsQueueItUpResponse(resp *http.Response, b []byte) (bool, error) {
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/html") {
		return strings.Contains(string(b), "queue-it"), nil
	}

	var body errorBody
	if err := json.Unmarshal(b, &body); nil != err {
		return false, fmt.Errorf("failed to decode 403 status code response body: %v", err)
	}

	return body.Status == http.StatusForbidden && body.UserMessage == "Too many requests", nil
}
