package http

import "time"

// Request describes a single call: method, path relative to the configured
// base URL, optional JSON body, and headers.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    string
	Timeout time.Duration
}

func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}
