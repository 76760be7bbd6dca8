package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type StorageMode string

const (
	StorageModeGCS         StorageMode = "gcs"
	StorageModeGCSEmulator StorageMode = "gcs_emulator"
)

// StorageConfig describes the single media bucket task images live in.
type StorageConfig struct {
	Bucket       string
	Mode         StorageMode
	EmulatorHost string
	// Credentials is either inline service-account JSON or a path to it.
	Credentials string
	// ModeInferred is set when Mode was derived from EmulatorHost.
	ModeInferred bool
}

func (cfg StorageConfig) IsEmulator() bool {
	return cfg.Mode == StorageModeGCSEmulator
}

func (cfg StorageConfig) ModeSource() string {
	if cfg.ModeInferred {
		return "emulator_host"
	}
	return "explicit_or_default"
}

type StorageConfigErrorCode string

const (
	StorageConfigErrorMissingBucket       StorageConfigErrorCode = "missing_bucket"
	StorageConfigErrorInvalidMode         StorageConfigErrorCode = "invalid_mode"
	StorageConfigErrorMissingEmulatorHost StorageConfigErrorCode = "missing_emulator_host"
	StorageConfigErrorInvalidEmulatorHost StorageConfigErrorCode = "invalid_emulator_host"
)

type StorageConfigError struct {
	Code         StorageConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case StorageConfigErrorMissingBucket:
		return "GCP_MEDIA_BUCKET_NAME is required"
	case StorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", e.Mode, StorageModeGCS, StorageModeGCSEmulator)
	case StorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", StorageModeGCSEmulator)
	case StorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	default:
		return "invalid object storage config"
	}
}

func (e *StorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Normalize fills Mode from the raw mode string and emulator host, then validates.
// An empty mode with an emulator host selects the emulator.
func (cfg StorageConfig) Normalize(rawMode string) (StorageConfig, error) {
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	rawMode = strings.TrimSpace(rawMode)

	switch mode := StorageMode(strings.ToLower(rawMode)); mode {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = StorageModeGCSEmulator
			cfg.ModeInferred = true
		} else {
			cfg.Mode = StorageModeGCS
		}
	case StorageModeGCS, StorageModeGCSEmulator:
		cfg.Mode = mode
	default:
		return cfg, &StorageConfigError{Code: StorageConfigErrorInvalidMode, Mode: rawMode}
	}
	return cfg, cfg.Validate()
}

func (cfg StorageConfig) Validate() error {
	if cfg.Bucket == "" {
		return &StorageConfigError{Code: StorageConfigErrorMissingBucket, Mode: string(cfg.Mode)}
	}
	switch cfg.Mode {
	case StorageModeGCS:
		return nil
	case StorageModeGCSEmulator:
	default:
		return &StorageConfigError{Code: StorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if cfg.EmulatorHost == "" {
		return &StorageConfigError{Code: StorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return &StorageConfigError{
			Code:         StorageConfigErrorInvalidEmulatorHost,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        err,
		}
	}
	return nil
}
