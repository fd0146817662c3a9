package service

import "errors"

var (
	ErrSameToken         = errors.New("input and output mints are equal")
	ErrUnknownToken      = errors.New("mint is not registered with the venue program")
	ErrUnknownInstrument = errors.New("no instrument exists for the mint pair")
)
