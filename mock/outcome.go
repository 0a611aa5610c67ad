package mock

import (
	"fmt"
	"net/http"

	"github.com/reservekit/api-contract-tests/transport"
)

// Kind is the type of a scheduled outcome.
type Kind int

const (
	Success Kind = iota
	ErrorResponse
	NetworkError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ErrorResponse:
		return "error-response"
	case NetworkError:
		return "network-error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is one scripted result for a verb.
type Outcome struct {
	Kind Kind

	// Body is the response data for Success and ErrorResponse outcomes.
	Body any

	// Status is the HTTP status of an ErrorResponse outcome.
	Status int

	// Headers are the response headers of an ErrorResponse outcome.
	Headers http.Header

	// Code and Message are copied into the transport error for ErrorResponse and
	// NetworkError outcomes.
	Code    string
	Message string

	// Sticky outcomes are returned for every call once the one-shot queue is empty.
	Sticky bool
}

// ErrorMeta carries optional extras merged into a scheduled error response.
type ErrorMeta struct {
	Headers map[string]string
	Code    string
	Message string
}

func (o Outcome) resolve() (*transport.Response, error) {
	switch o.Kind {
	case Success:
		return &transport.Response{
			Status:     http.StatusOK,
			StatusText: http.StatusText(http.StatusOK),
			Headers:    make(http.Header),
			Data:       o.Body,
		}, nil
	case ErrorResponse:
		headers := o.Headers.Clone()
		if headers == nil {
			headers = make(http.Header)
		}
		message := o.Message
		if message == "" {
			message = fmt.Sprintf("Request failed with status code %d", o.Status)
		}
		return nil, &transport.Error{
			Code:    o.Code,
			Message: message,
			Response: &transport.ErrorResponse{
				Status:  o.Status,
				Data:    o.Body,
				Headers: headers,
			},
		}
	default:
		return nil, &transport.Error{Code: o.Code, Message: o.Message}
	}
}
