package domain

import "net/url"

// Request is the transport-agnostic shape of one remote call: GET requests
// carry query parameters, POST requests a JSON body.
type Request struct {
	Method Method
	Path   string
	Query  url.Values
	Body   map[string]any
}

// Response captures what success classification needs from a remote reply.
type Response struct {
	HTTPStatus int
	// Status is the status field of the parsed JSON body; StatusKnown is
	// false when the body was not valid JSON or carried no status field.
	Status      int
	StatusKnown bool
	Body        string
}

// Classify reports whether a remote call succeeded: HTTP 200 and a JSON body
// whose status field equals 200. Administrative point operations additionally
// accept 0, a confirmed quirk of the admin API.
func Classify(resp Response, acceptZero bool) bool {
	if resp.HTTPStatus != 200 {
		return false
	}
	if !resp.StatusKnown {
		return false
	}
	if resp.Status == 200 {
		return true
	}

	return acceptZero && resp.Status == 0
}
