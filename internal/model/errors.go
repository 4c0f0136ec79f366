package model

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMalformedResponse = errors.New("malformed response")
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrNoMarkets         = errors.New("no resolved markets loaded")
)
