package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"taskdash/internal/files"
	"taskdash/pkg/contracts"
)

// ClientCounter reports connected websocket clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	discovery *files.Discovery
	source    DatasetSource
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// DataStatus reports every input file and the dataset cache
type DataStatus struct {
	Files   []files.FileInfo `json:"files"`
	Missing []string         `json:"missing"`
	Cache   files.CacheStats `json:"cache"`
}

// NewHealthService creates a health service. clients may be nil when the
// websocket hub is not running.
func NewHealthService(version, buildTime string, discovery *files.Discovery, source DatasetSource, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		discovery: discovery,
		source:    source,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status with the data file summary
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"data":      hs.DataStatus(ctx),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.Duration("uptime", time.Since(hs.startTime)))

	return status
}

// ReadinessCheck reports ready once the dataset can be served. Missing files
// do not block readiness since they degrade to empty tables.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"dataset":   hs.checkDatasetHealth(ctx),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	build := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":     hs.version,
		"git_commit":  build.GitCommit,
		"go_version":  build.GoVersion,
		"platform":    build.Platform,
		"data_format": build.DataFormat,
		"api_version": build.APIVersion,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// DataStatus inspects the input files without loading them
func (hs *HealthService) DataStatus(ctx context.Context) DataStatus {
	status := DataStatus{Files: []files.FileInfo{}, Missing: []string{}}
	if hs.discovery != nil {
		status.Files = hs.discovery.Inspect()
		for _, fi := range hs.discovery.Missing() {
			status.Missing = append(status.Missing, fi.Name)
		}
	}
	if hs.source != nil {
		status.Cache = hs.source.Stats()
	}
	if len(status.Missing) > 0 {
		hs.logger.WarnContext(ctx, "data files missing", slog.Any("files", status.Missing))
	}
	return status
}

func (hs *HealthService) checkDatasetHealth(ctx context.Context) ServiceHealth {
	if hs.source == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset source not initialized"}
	}
	ds, err := hs.source.Get(ctx)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Dataset error: %v", err),
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("Dataset %s loaded with %d warnings", ds.Version, len(ds.Warnings)),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "ready", Message: "WebSocket hub disabled"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}
