package config

import "errors"

// ErrMissingRPCEndpoint indicates that the required SOLANA_RPC_URL variable is
// not set in the environment.
var ErrMissingRPCEndpoint = errors.New("missing SOLANA_RPC_URL environment variable")

// ErrMissingProgramID indicates that the required DRV_PROGRAM_ID variable is
// not set in the environment.
var ErrMissingProgramID = errors.New("missing DRV_PROGRAM_ID environment variable")

// ErrInvalidProgramID indicates that DRV_PROGRAM_ID is not a valid base58
// public key.
var ErrInvalidProgramID = errors.New("invalid DRV_PROGRAM_ID")

// ErrInvalidSchemaVersion indicates that DRV_SCHEMA_VERSION is not a valid
// unsigned integer.
var ErrInvalidSchemaVersion = errors.New("invalid DRV_SCHEMA_VERSION")
