package server

import (
	"context"
	"fmt"

	"github.com/hyperjump/wali/internal/backend"
	"github.com/hyperjump/wali/internal/config"
	"github.com/hyperjump/wali/internal/models"
	"github.com/hyperjump/wali/internal/storage"
	"github.com/hyperjump/wali/internal/vector"
)

// CollectStatus summarizes the knowledge base. Model names come from the live
// clients when configured, otherwise from cfg.
func CollectStatus(ctx context.Context, store storage.Storage, index vector.Index, be *backend.Backend, cfg *config.Config) (*models.Status, error) {
	docs, err := store.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	chunks, err := store.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	status := &models.Status{
		Documents:      int(docs),
		Chunks:         int(chunks),
		IndexedVectors: index.Len(),
		EmbeddingModel: cfg.Embedding.Model,
		LLMModel:       cfg.Generation.Model,
	}
	if svc, err := be.Services(); err == nil {
		status.Configured = true
		status.EmbeddingModel = svc.Embedder.Model()
		status.LLMModel = svc.Generator.Model()
	}
	paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.VectorIndexPath)
	if n, err := storage.DiskUsageBytes(paths...); err == nil {
		status.DiskUsageBytes = n
	}
	return status, nil
}
