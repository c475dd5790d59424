package middleware

import "errors"

var errForbidden = errors.New("forbidden")
