// Package apispec reads the API contract document that test bodies take their literal
// examples from. The document maps "<METHOD>_<path>" keys to an endpoint description with
// a request example and per-status response examples. It may be written in YAML or JSON.
//
// Nothing in the transport layer consults this document; it is reference data only.
package apispec

import (
	_ "embed" // for the built-in document
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/reservekit/api-contract-tests/transport"
	"github.com/reservekit/api-contract-tests/validation"

	"gopkg.in/yaml.v3"
)

//go:embed reservations_api.yaml
var builtinDocument []byte

// Endpoint describes one operation of the API.
type Endpoint struct {
	RestfulURL         string                  `yaml:"restfulUrl"`
	RequestBodyExample any                     `yaml:"requestBodyExample"`
	Responses          map[string]ResponseSpec `yaml:"responses"`
}

// ResponseSpec describes the responses for one status code. Success statuses carry a single
// Example; error statuses carry Examples keyed by application error code.
type ResponseSpec struct {
	Example  any            `yaml:"example"`
	Examples map[string]any `yaml:"examples"`
	Schema   any            `yaml:"schema"`
}

// Document is a parsed contract document.
type Document struct {
	endpoints map[string]Endpoint
}

// Key returns the document key of an operation, such as "POST_/reservations".
func Key(method transport.Method, path string) string {
	return string(method) + "_" + path
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (transport.Method, string, bool) {
	i := strings.Index(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return transport.Method(key[:i]), key[i+1:], true
}

// Parse parses a document.
func Parse(data []byte) (*Document, error) {
	var endpoints map[string]Endpoint
	if err := yaml.Unmarshal(data, &endpoints); err != nil {
		return nil, fmt.Errorf("parse API document: %w", err)
	}
	for key, ep := range endpoints {
		if _, _, ok := SplitKey(key); !ok {
			return nil, fmt.Errorf("parse API document: malformed key %q", key)
		}
		for status := range ep.Responses {
			if _, err := strconv.Atoi(status); err != nil {
				return nil, fmt.Errorf("parse API document: %s: status %q is not a number", key, status)
			}
		}
	}
	if endpoints == nil {
		endpoints = make(map[string]Endpoint)
	}
	return &Document{endpoints: endpoints}, nil
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Builtin returns the reservation API document compiled into the binary.
func Builtin() *Document {
	doc, err := Parse(builtinDocument)
	if err != nil {
		panic(err)
	}
	return doc
}

// Keys returns every endpoint key in sorted order.
func (d *Document) Keys() []string {
	ret := make([]string, 0, len(d.endpoints))
	for k := range d.endpoints {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Endpoint returns the endpoint for a key.
func (d *Document) Endpoint(key string) (Endpoint, bool) {
	ep, ok := d.endpoints[key]
	return ep, ok
}

// RequestExample returns the request body example of an endpoint.
func (d *Document) RequestExample(key string) (any, error) {
	ep, err := d.mustEndpoint(key)
	if err != nil {
		return nil, err
	}
	if ep.RequestBodyExample == nil {
		return nil, fmt.Errorf("%s has no request body example", key)
	}
	return ep.RequestBodyExample, nil
}

// SuccessStatus returns the lowest 2xx status documented for an endpoint.
func (d *Document) SuccessStatus(key string) (int, error) {
	ep, err := d.mustEndpoint(key)
	if err != nil {
		return 0, err
	}
	best := 0
	for s := range ep.Responses {
		n, _ := strconv.Atoi(s)
		if n >= 200 && n < 300 && (best == 0 || n < best) {
			best = n
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("%s has no success response", key)
	}
	return best, nil
}

// SuccessExample returns the example body of an endpoint's success response.
func (d *Document) SuccessExample(key string) (any, error) {
	status, err := d.SuccessStatus(key)
	if err != nil {
		return nil, err
	}
	return d.endpoints[key].Responses[strconv.Itoa(status)].Example, nil
}

// ErrorExample returns the example body for an application error code under a status.
func (d *Document) ErrorExample(key string, status int, errorCode string) (any, error) {
	rs, err := d.response(key, status)
	if err != nil {
		return nil, err
	}
	body, ok := rs.Examples[errorCode]
	if !ok {
		return nil, fmt.Errorf("%s %d has no example for %s", key, status, errorCode)
	}
	return body, nil
}

// ResponseSchema compiles the schema documented for a status.
func (d *Document) ResponseSchema(key string, status int) (*validation.Shape, error) {
	rs, err := d.response(key, status)
	if err != nil {
		return nil, err
	}
	if rs.Schema == nil {
		return nil, fmt.Errorf("%s %d has no schema", key, status)
	}
	name := strings.NewReplacer("/", "_", "{", "", "}", "").Replace(key) + "_" + strconv.Itoa(status)
	return validation.CompileSchemaValue(name, rs.Schema)
}

func (d *Document) response(key string, status int) (ResponseSpec, error) {
	ep, err := d.mustEndpoint(key)
	if err != nil {
		return ResponseSpec{}, err
	}
	rs, ok := ep.Responses[strconv.Itoa(status)]
	if !ok {
		return ResponseSpec{}, fmt.Errorf("%s has no %d response", key, status)
	}
	return rs, nil
}

func (d *Document) mustEndpoint(key string) (Endpoint, error) {
	ep, ok := d.endpoints[key]
	if !ok {
		return Endpoint{}, fmt.Errorf("unknown endpoint %s", key)
	}
	return ep, nil
}
