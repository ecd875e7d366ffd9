package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dukerupert/shelf/internal/auth"
	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func testSession() *domain.Session {
	return &domain.Session{
		UserID:    uuid.New(),
		Email:     "ada@example.com",
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

type mockProductStore struct {
	ListProductsFunc  func(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.RawProduct, error)
	CreateProductFunc func(ctx context.Context, ownerID uuid.UUID, params domain.CreateProductParams) (domain.RawProduct, error)
	DeleteProductFunc func(ctx context.Context, ownerID, id uuid.UUID) error
}

func (m *mockProductStore) ListProducts(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.RawProduct, error) {
	return m.ListProductsFunc(ctx, ownerID, limit)
}

func (m *mockProductStore) CreateProduct(ctx context.Context, ownerID uuid.UUID, params domain.CreateProductParams) (domain.RawProduct, error) {
	return m.CreateProductFunc(ctx, ownerID, params)
}

func (m *mockProductStore) DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.DeleteProductFunc(ctx, ownerID, id)
}

type mockProfileStore struct {
	GetProfileFunc    func(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	UpsertProfileFunc func(ctx context.Context, params domain.UpsertProfileParams) (*domain.Profile, error)
}

func (m *mockProfileStore) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return m.GetProfileFunc(ctx, userID)
}

func (m *mockProfileStore) UpsertProfile(ctx context.Context, params domain.UpsertProfileParams) (*domain.Profile, error) {
	return m.UpsertProfileFunc(ctx, params)
}

type mockUserStore struct {
	CreateUserFunc            func(ctx context.Context, email, passwordHash, userName string) (*domain.User, error)
	GetUserByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordFunc        func(ctx context.Context, userID uuid.UUID, passwordHash string) error
	CreateSessionFunc         func(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetSessionFunc            func(ctx context.Context, token string) (*domain.Session, error)
	DeleteSessionFunc         func(ctx context.Context, token string) error
	DeleteExpiredSessionsFunc func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockUserStore) CreateUser(ctx context.Context, email, passwordHash, userName string) (*domain.User, error) {
	return m.CreateUserFunc(ctx, email, passwordHash, userName)
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetUserByEmailFunc(ctx, email)
}

func (m *mockUserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return m.UpdatePasswordFunc(ctx, userID, passwordHash)
}

func (m *mockUserStore) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return m.CreateSessionFunc(ctx, userID, token, expiresAt)
}

func (m *mockUserStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	return m.GetSessionFunc(ctx, token)
}

func (m *mockUserStore) DeleteSession(ctx context.Context, token string) error {
	return m.DeleteSessionFunc(ctx, token)
}

func (m *mockUserStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return m.DeleteExpiredSessionsFunc(ctx, now)
}

type mockStorage struct {
	PutFunc    func(ctx context.Context, key string, content io.Reader, contentType string) (string, error)
	DeleteFunc func(ctx context.Context, key string) error
}

func (m *mockStorage) Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	return m.PutFunc(ctx, key, content, contentType)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.DeleteFunc(ctx, key)
}

// recordingPublisher keeps published events and can be made to fail.
type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// plainHasher stores passwords with a fixed prefix.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, hash string) error {
	if hash != "hashed:"+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
