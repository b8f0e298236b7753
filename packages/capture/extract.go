package capture

import (
	"strings"

	"github.com/chainspec/chainspec/packages/http"
	"github.com/tidwall/gjson"
)

// Extractor pulls values out of a response for publication into the store.
// Source paths take the form "body.<json path>", "header.<Name>", or
// "status".
type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if resp.IsJSON() {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
	}
	return e
}

func (e *Extractor) Extract(source string) (any, bool) {
	switch {
	case source == "status":
		return e.response.StatusCode, true
	case source == "body":
		return e.extractFromBody("")
	case strings.HasPrefix(source, "body."):
		return e.extractFromBody(strings.TrimPrefix(source, "body."))
	case strings.HasPrefix(source, "header."):
		return e.extractFromHeader(strings.TrimPrefix(source, "header."))
	default:
		return nil, false
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" {
			return e.response.BodyString(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value := e.response.Header(name)
	if value == "" {
		return nil, false
	}
	return value, true
}

// ExtractAll resolves a set of named capture sources against one response.
// Sources that do not match anything are omitted from the result.
func ExtractAll(resp *http.Response, captures map[string]string) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for name, source := range captures {
		if value, ok := extractor.Extract(source); ok {
			results[name] = value
		}
	}

	return results
}
