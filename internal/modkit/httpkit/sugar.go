package httpkit

import (
	"net/http"

	phttp "sharerelay/internal/platform/net/http"
	"sharerelay/internal/platform/net/http/bind"
)

// JSONOptions tunes request body decoding
type JSONOptions = bind.JSONOptions

// Get registers a no-body handler with the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, h)
}

// GetRaw registers a no-body handler whose result is written flat
func GetRaw(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetRaw(r, path, h)
}

// PostJSON mounts a bound JSON body handler under POST with the envelope adapter
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...JSONOptions) {
	phttp.PostJSON(r, path, h, opts...)
}

// PostRaw mounts a bound JSON body handler under POST whose result is written flat
func PostRaw[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...JSONOptions) {
	phttp.PostRaw(r, path, h, opts...)
}
