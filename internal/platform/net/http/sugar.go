package http

import (
	"net/http"

	"sharerelay/internal/platform/net/http/bind"
)

// GetJSON mounts an enveloped JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, JSONHandlerNoBody(h))
}

// GetRaw mounts an unwrapped JSON handler for GET
func GetRaw(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, RawHandlerNoBody(h))
}

// PostJSON mounts an enveloped JSON handler for POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	r.Post(path, JSONHandler(h, opts...))
}

// PostRaw mounts a JSON body handler for POST whose success body is unwrapped
func PostRaw[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	r.Post(path, RawJSONHandler(h, opts...))
}
