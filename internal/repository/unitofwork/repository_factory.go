package unitofwork

import "context"

// RepositoryFactory hands out one UnitOfWork per operation. Services hold the
// factory, never a *gorm.DB.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
