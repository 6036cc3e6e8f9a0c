package usecase

import (
	"context"

	"cv-site/internal/domain"
)

// CVStore is the remote CV data service as seen by the console.
type CVStore interface {
	FetchCV(ctx context.Context) (domain.CvDocument, error)
	UpdatePersonalInfo(ctx context.Context, info domain.PersonalInfo) (domain.PersonalInfo, error)
	CreateEntity(ctx context.Context, kind domain.Kind, e domain.Entity) (domain.Entity, error)
	UpdateEntity(ctx context.Context, kind domain.Kind, id int64, e domain.Entity) (domain.Entity, error)
	DeleteEntity(ctx context.Context, kind domain.Kind, id int64) error
}

// CVRepository is the storage behind the CV data service.
type CVRepository interface {
	GetCV(ctx context.Context) (domain.CvDocument, error)
	UpdatePersonalInfo(ctx context.Context, info domain.PersonalInfo) (domain.PersonalInfo, error)
	CreateEntity(ctx context.Context, kind domain.Kind, e domain.Entity) (domain.Entity, error)
	UpdateEntity(ctx context.Context, kind domain.Kind, id int64, e domain.Entity) (domain.Entity, error)
	DeleteEntity(ctx context.Context, kind domain.Kind, id int64) error
}
