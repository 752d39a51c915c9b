package model

import "github.com/drover-dev/drover/pkg/domain/types"

// HealthStatus is the payload of the health check endpoint.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// NewHealthStatus reports the service as healthy at the current version.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		Status:  "healthy",
		Service: "drover",
		Version: types.Version,
	}
}
