package source

import "context"

// Store persists a tenant's source list.
type Store interface {
	Load(ctx context.Context, tenantID string) ([]Source, error)
	Save(ctx context.Context, tenantID string, sources []Source) error
}

// MetadataService lists objects and fields on the platform.
type MetadataService interface {
	ListObjects(ctx context.Context) ([]FieldOption, error)
	ListFields(ctx context.Context, object string) ([]FieldOption, error)
	ListDateFields(ctx context.Context, object string) ([]FieldOption, error)
	ListUserReferenceFields(ctx context.Context, object string) ([]FieldOption, error)
	ListTitleCandidateFields(ctx context.Context, object string) ([]FieldOption, error)
}
