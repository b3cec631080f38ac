package models

import "errors"

// ErrMalformedResponse marks a server payload that decoded but does not
// satisfy the shape the client relies on.
var ErrMalformedResponse = errors.New("malformed response")

// ErrUnknownStatus is returned by ParseOrderStatus and ParseStatusFilter.
var ErrUnknownStatus = errors.New("unknown order status")
