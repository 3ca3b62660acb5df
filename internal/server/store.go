package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sakif/bloom/internal/config"
	"github.com/sakif/bloom/internal/repository"
	badgerRepo "github.com/sakif/bloom/internal/repository/badger"
	mongoRepo "github.com/sakif/bloom/internal/repository/mongo"
	sqliteRepo "github.com/sakif/bloom/internal/repository/sqlite"
	"github.com/sakif/bloom/internal/storage"
)

// OpenStore connects the document store backend named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		logger.Info("opening store", slog.String("driver", "sqlite"), slog.String("path", cfg.SQLitePath))
		return sqliteRepo.New(cfg.SQLitePath)

	case "badger":
		logger.Info("opening store", slog.String("driver", "badger"), slog.String("dir", cfg.BadgerDir))
		return badgerRepo.New(cfg.BadgerDir)

	case "mongo":
		logger.Info("opening store", slog.String("driver", "mongo"), slog.String("database", cfg.MongoDatabase))
		return mongoRepo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// imageBackend is the configured image store plus, for disk storage, the
// handler that serves uploaded files and the path it is mounted on.
type imageBackend struct {
	store     storage.ImageStore // nil when uploads are disabled
	files     http.Handler
	mountPath string
}

func openImageStore(cfg config.StorageConfig, logger *slog.Logger) (imageBackend, error) {
	switch cfg.Driver {
	case "disk":
		disk, err := storage.NewDisk(afero.NewOsFs(), cfg.UploadDir, cfg.PublicPath)
		if err != nil {
			return imageBackend{}, err
		}
		logger.Info("image uploads on disk", slog.String("dir", cfg.UploadDir), slog.String("path", disk.PublicPath()))
		return imageBackend{store: disk, files: disk.Handler(), mountPath: disk.PublicPath()}, nil

	case "cloudinary":
		cld, err := storage.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
		if err != nil {
			return imageBackend{}, err
		}
		logger.Info("image uploads on cloudinary", slog.String("folder", cfg.CloudinaryFolder))
		return imageBackend{store: cld}, nil

	case "none":
		logger.Info("image uploads disabled")
		return imageBackend{}, nil

	default:
		return imageBackend{}, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
