package handler

import "github.com/gofiber/fiber/v3"

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrSameMints is returned when input and output mints are identical.
var ErrSameMints = fiber.NewError(fiber.StatusBadRequest, "input and output mints cannot be the same")

// ErrAmountRequired is returned when the amount parameter is missing.
var ErrAmountRequired = fiber.NewError(fiber.StatusBadRequest, "amount is required")

// ErrInvalidAmountFormat is returned when the amount cannot be parsed as a
// base-10 unsigned integer.
var ErrInvalidAmountFormat = fiber.NewError(fiber.StatusBadRequest, "invalid amount format")

// ErrAmountZero is returned when the amount is zero.
var ErrAmountZero = fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")

// ErrInvalidMode is returned for a swap mode other than ExactIn or ExactOut.
var ErrInvalidMode = fiber.NewError(fiber.StatusBadRequest, "invalid swap mode")

// ErrModeUnsupportedBadRequest maps an unsupported swap mode to a 400 error.
var ErrModeUnsupportedBadRequest = fiber.NewError(fiber.StatusBadRequest, "only ExactIn swaps are supported")

// ErrSwapFailedBadRequest maps a failed fill simulation to a 400 error.
var ErrSwapFailedBadRequest = fiber.NewError(fiber.StatusBadRequest, "no viable fill for the requested amount")

// ErrUnknownPairNotFound maps an unresolvable mint pair to a 404 error.
var ErrUnknownPairNotFound = fiber.NewError(fiber.StatusNotFound, "no instrument trades this mint pair")

// ErrBadAccountDataBadGateway signals that on-chain account state could not
// be decoded.
var ErrBadAccountDataBadGateway = fiber.NewError(fiber.StatusBadGateway, "venue account state is unavailable or malformed")

// ErrQuoteFailedInternal signals a generic server-side quoting error.
var ErrQuoteFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "quote failed")

// NewMintRequired returns a 400 Bad Request for a missing mint field.
func NewMintRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" mint is required")
}

// NewInvalidMint returns a 400 Bad Request for a mint that is not a valid
// base-58 public key.
func NewInvalidMint(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" mint")
}
