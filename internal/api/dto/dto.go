package dto

import (
	"github.com/olyamironova/mbp-reconstructor/internal/core"
	"github.com/olyamironova/mbp-reconstructor/internal/domain"
)

type SnapshotResponse struct {
	Snapshot *domain.Snapshot `json:"snapshot"`
}

type StatsResponse struct {
	Stats core.Stats `json:"stats"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
