package app

import (
	"context"
	"fmt"

	"ShopAPI/internal/config"
	"ShopAPI/internal/product"
	"ShopAPI/internal/upload"
	"ShopAPI/internal/user"
)

// BuildDeps constructs stores and upload storage from cfg.
func BuildDeps(ctx context.Context, cfg config.Config) (Deps, error) {
	deps := Deps{
		MaxUploadBytes:  cfg.Upload.MaxBytes,
		AuthRealm:       cfg.Auth.Realm,
		ProtectProducts: cfg.Auth.ProtectProducts,
		SignupPerMin:    cfg.Auth.SignupPerMin,
		SigninPerMin:    cfg.Auth.SigninPerMin,
	}

	if cfg.SeedData {
		deps.Products = product.NewMemStore(product.SeedProducts()...)
		deps.Users = user.NewMemStore(user.SeedUsers()...)
	} else {
		deps.Products = product.NewMemStore()
		deps.Users = user.NewMemStore()
	}

	switch cfg.Upload.Backend {
	case config.UploadBackendDisk:
		disk, err := upload.NewDiskStorage(cfg.Upload.Dir)
		if err != nil {
			return Deps{}, err
		}
		deps.Uploads = disk
		deps.UploadDir = disk.Dir()

	case config.UploadBackendS3:
		s3cfg := cfg.Upload.S3
		client, err := upload.NewS3Client(ctx, upload.S3Options{
			Region:       s3cfg.Region,
			BaseEndpoint: s3cfg.BaseEndpoint,
			AccessKey:    s3cfg.AccessKey,
			SecretKey:    s3cfg.SecretKey,
		})
		if err != nil {
			return Deps{}, err
		}
		deps.Uploads = upload.NewS3Storage(client, s3cfg.Bucket, s3cfg.PublicURL)

	default:
		return Deps{}, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
	}

	return deps, nil
}
