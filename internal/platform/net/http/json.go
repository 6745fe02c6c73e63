package http

import (
	"net/http"

	"sharerelay/internal/platform/net/http/bind"
)

// JSONHandler adapts a pure JSON handler to a platform Handler; output is enveloped
func JSONHandler[T any](fn func(*http.Request, T) (any, error), opts ...bind.JSONOptions) Handler {
	return bodyHandler(fn, OK, opts)
}

// RawJSONHandler is JSONHandler with the success body written unwrapped
func RawJSONHandler[T any](fn func(*http.Request, T) (any, error), opts ...bind.JSONOptions) Handler {
	return bodyHandler(fn, Raw, opts)
}

func bodyHandler[T any](fn func(*http.Request, T) (any, error), ok func(any) Response, opts []bind.JSONOptions) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r, opts...)
		if err != nil {
			return Error(err)
		}
		return finish(fn(r, in))(ok)
	})
}

// JSONHandlerNoBody calls fn without parsing a request body and envelopes the result
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return finish(fn(r))(OK) })
}

// RawHandlerNoBody calls fn without parsing a request body and writes the result unwrapped
func RawHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return finish(fn(r))(Raw) })
}

// finish turns a handler result into a Response; handlers may return a Response directly
func finish(out any, err error) func(func(any) Response) Response {
	return func(ok func(any) Response) Response {
		if err != nil {
			return Error(err)
		}
		if resp, isResp := out.(Response); isResp {
			return resp
		}
		return ok(out)
	}
}
