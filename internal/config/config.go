package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go"
)

type Config struct {
	Addr          string
	RPCEndpoint   string
	ProgramID     solana.PublicKey
	SchemaVersion uint32
	LogLevel      string
}

func FromEnv() (*Config, error) {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":1337"
	}

	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		return nil, ErrMissingRPCEndpoint
	}

	programIDRaw := os.Getenv("DRV_PROGRAM_ID")
	if programIDRaw == "" {
		return nil, ErrMissingProgramID
	}
	programID, err := solana.PublicKeyFromBase58(programIDRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProgramID, err)
	}

	schemaVersion := uint32(1)
	if raw := os.Getenv("DRV_SCHEMA_VERSION"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchemaVersion, err)
		}
		schemaVersion = uint32(parsed)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	cfg := &Config{
		Addr:          addr,
		RPCEndpoint:   rpcURL,
		ProgramID:     programID,
		SchemaVersion: schemaVersion,
		LogLevel:      logLevel,
	}

	return cfg, nil
}
