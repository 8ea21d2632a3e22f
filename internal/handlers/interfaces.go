package handlers

import (
	"context"

	"bookbot/internal/identity"
	"bookbot/internal/indexer"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_identity_service.go -package=mocks bookbot/internal/handlers IdentityService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_library_service.go -package=mocks bookbot/internal/handlers LibraryService

// IdentityService is the account API used by the auth handlers and middleware.
type IdentityService interface {
	Register(ctx context.Context, username, email, password string) (*identity.RegisterResult, error)
	Login(ctx context.Context, username, password string) (*identity.LoginResult, error)
	Resolve(ctx context.Context, token string) (*identity.Identity, error)
	Deactivate(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) error
}

// LibraryService is the book API used by the book and ask handlers.
type LibraryService interface {
	IngestDocument(ctx context.Context, name, raw string) indexer.IngestResult
	IngestAll(ctx context.Context, dir string) ([]indexer.IngestResult, error)
	ListBooks(ctx context.Context) ([]indexer.Book, error)
	DeleteBook(ctx context.Context, bookID string) (*indexer.DeleteResult, error)
	Search(ctx context.Context, question string, limit int) ([]indexer.SearchHit, error)
}
