package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/mimichub-backend/internal/platform/gcp"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

var newMediaBucket = gcp.NewMediaBucket

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error { return e.Cause }

// resolveMediaBucket returns a nil bucket when no bucket name is configured;
// the upload routes are then not mounted.
func resolveMediaBucket(log *logger.Logger, cfg Config) (gcp.MediaBucket, error) {
	if strings.TrimSpace(cfg.Storage.Bucket) == "" {
		log.Warn("GCP_MEDIA_BUCKET_NAME is not set; image upload routes are disabled")
		return nil, nil
	}
	storageCfg, err := cfg.Storage.Normalize(cfg.StorageModeRaw)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error("Object storage config rejected", "mode", cfg.StorageModeRaw, "error", classified)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
	)
	bucket, err := newMediaBucket(log, storageCfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error("Object storage provider bootstrap failed", "mode", storageCfg.Mode, "error", classified)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.StorageConfig, err error) error {
	out := &StorageProviderBootstrapError{
		Code:         StorageProviderBootstrapErrorConnectFailed,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
	var cfgErr *gcp.StorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.StorageConfigErrorInvalidMode:
			out.Code = StorageProviderBootstrapErrorInvalidMode
			out.Mode = cfgErr.Mode
		case gcp.StorageConfigErrorMissingEmulatorHost:
			out.Code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.StorageConfigErrorInvalidEmulatorHost:
			out.Code = StorageProviderBootstrapErrorInvalidEmulatorHost
		}
	}
	return out
}
