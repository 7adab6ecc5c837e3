/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates JSON body binding and query parameter parsing, mapping every
failure to an errs.CustomError so handlers can respond directly.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"twoogle/internal/pkg/errs"
)

// MaxBodySize bounds JSON request bodies. Board payloads are a few hundred bytes.
const MaxBodySize int64 = 64 << 10 // 64 KB

// MaxLimit caps the "limit" query parameter of feed endpoints.
const MaxLimit = 100

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrInvalidParams)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// QueryLimit parses the "limit" query parameter. A missing parameter yields
// fallback; anything that is not an integer in [1, MaxLimit] is rejected.
func QueryLimit(r *http.Request, fallback int) (int, *errs.CustomError) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxLimit {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}
	return n, nil
}
