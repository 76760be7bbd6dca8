package services

import (
	dataagg "github.com/yungbote/mimichub-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
)

const (
	msgTaskNotFound       = "Task not found"
	msgVariantNotFound    = "Task variant not found"
	msgSubdatasetNotFound = "Subdataset not found"
	msgRawEpisodeNotFound = "Raw episode not found"
	msgItemNotFound       = "Item not found"
	msgEmbodimentNotFound = "Embodiment not found"
	msgTeleopNotFound     = "Teleop mode not found"
	msgAlreadyLinked      = "Subdataset is already linked to a task variant"
)

// storeErr maps a repository failure for reads and single-statement writes.
func storeErr(op string, err error) error {
	return dataagg.MapError(op, err)
}

func notFound(op, msg string) error { return domainagg.NotFound(op, msg) }

func invalid(op, msg string) error { return domainagg.Invalid(op, msg) }

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
