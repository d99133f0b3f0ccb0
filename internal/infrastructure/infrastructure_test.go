package infrastructure_test

import (
	"testing"

	"github.com/annolab/curator/internal/config"
	"github.com/annolab/curator/pkg/cache"
	"github.com/annolab/curator/pkg/database"
	"github.com/annolab/curator/pkg/llm"
	"github.com/annolab/curator/pkg/storage"

	"github.com/annolab/curator/internal/infrastructure"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=curatorstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/curatorstore;"

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "curator",
			User:            "curator",
			Password:        "curator",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "artifacts",
			ConnectionString: azuriteConnString,
		},
		Cache: cache.Config{
			Path: t.TempDir(),
		},
		Provider: llm.Config{
			BaseURL:         "http://localhost:11434/v1",
			CompletionModel: "gpt-4.1",
			AggregateModel:  "deepseek-reasoner",
			EmbeddingModel:  "text-embedding-3-large",
			BatchSize:       20,
			RequestTimeout:  "5m",
		},
		Version: "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Cache.Close()

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Cache == nil {
		t.Error("Cache is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Client == nil {
		t.Error("Client is nil")
	}
	if infra.Runner == nil {
		t.Error("Runner is nil")
	}
}

func TestNewDatabaseConnection(t *testing.T) {
	infra, err := infrastructure.New(validConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Cache.Close()

	conn := infra.Database.Connection()
	if conn == nil {
		t.Fatal("Database.Connection() returned nil")
	}
	conn.Close()
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Storage.ConnectionString = "not-a-connection-string"

	_, err := infrastructure.New(cfg)
	if err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}
