package v1

import (
	"context"
	"testing"
	"time"

	"github.com/pracare/backend/internal/adapter/ai"
	"github.com/pracare/backend/internal/config"
	"github.com/pracare/backend/internal/domain"
	store "github.com/pracare/backend/internal/repository"
	"github.com/pracare/backend/internal/service"
	"github.com/pracare/backend/policy"
)

type fakeCompleter struct {
	content string
	err     error
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, _ *ai.ChatRequest) (*ai.ChatResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ai.ChatResponse{Message: &ai.ChatMessage{Role: "assistant", Content: f.content}}, nil
}

func newTestHandler(t *testing.T, completer ai.Completer) (*Handler, *store.SQLiteStore) {
	t.Helper()
	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	gateway := ai.NewGateway(completer, "pracare")
	svc := service.New(db, gateway, config.Load(), engine)
	return NewHandler(svc, db), db
}

func createTestUser(t *testing.T, db *store.SQLiteStore, id string, userType domain.UserType) *domain.User {
	t.Helper()
	user := &domain.User{
		UserID:    id,
		Email:     id + "@example.com",
		UserType:  userType,
		Token:     "token-" + id,
		CreatedAt: time.Now(),
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}
