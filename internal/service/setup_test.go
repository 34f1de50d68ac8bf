package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/raaksss/Monies/internal/auth"
	"github.com/raaksss/Monies/internal/events"
	"github.com/raaksss/Monies/internal/lock"
	"github.com/raaksss/Monies/internal/middleware"
	"github.com/raaksss/Monies/internal/storage/sqlite"
	"github.com/raaksss/Monies/pkg/api"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// recordingPublisher remembers the groups it was told about.
type recordingPublisher struct {
	mu     sync.Mutex
	groups []string
}

func (p *recordingPublisher) PublishGroupChanged(_ context.Context, groupID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = append(p.groups, groupID)
	return nil
}

type testEnv struct {
	server *httptest.Server
	store  *sqlite.SQLiteStore
}

// clients are the RPC clients of one signed-in user.
type clients struct {
	user     *api.User
	token    string
	auth     *api.AuthServiceClient
	groups   *api.GroupServiceClient
	expenses *api.ExpenseServiceClient
	debts    *api.DebtServiceClient
}

// setupTestServer starts every service behind the real auth interceptor. A nil
// publisher settles reciprocal splits inline.
func setupTestServer(t *testing.T, publisher events.Publisher) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	settler := NewSettler(store, lock.NewLocal(), discardLogger)

	opts := connect.WithInterceptors(middleware.RequireAuth(jwtManager, api.PublicProcedures))

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, discardLogger), opts))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store, discardLogger), opts))
	mux.Handle(api.NewExpenseServiceHandler(NewExpenseService(store, settler, publisher, discardLogger), opts))
	mux.Handle(api.NewDebtServiceHandler(NewDebtService(store, discardLogger), opts))
	mux.Handle(ExportPattern, middleware.RequireAuthHTTP(jwtManager, NewExportHandler(store, discardLogger)))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{server: server, store: store}
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

func (e *testEnv) clientsWithToken(token string) *clients {
	opts := connect.WithInterceptors(bearer(token))
	return &clients{
		token:    token,
		auth:     api.NewAuthServiceClient(http.DefaultClient, e.server.URL, opts),
		groups:   api.NewGroupServiceClient(http.DefaultClient, e.server.URL, opts),
		expenses: api.NewExpenseServiceClient(http.DefaultClient, e.server.URL, opts),
		debts:    api.NewDebtServiceClient(http.DefaultClient, e.server.URL, opts),
	}
}

// anonymous returns clients that send no token.
func (e *testEnv) anonymous() *clients {
	return e.clientsWithToken("")
}

// signUp registers a user and returns clients authenticated as them.
func (e *testEnv) signUp(t *testing.T, email string) *clients {
	t.Helper()

	resp, err := e.anonymous().auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: "Test User",
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	c := e.clientsWithToken(resp.Msg.Token)
	c.user = resp.Msg.User
	return c
}

func createGroup(t *testing.T, c *clients, members ...string) *api.Group {
	t.Helper()

	resp, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    "Test Group",
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

// memberID returns the ID of the named member.
func memberID(t *testing.T, g *api.Group, name string) string {
	t.Helper()
	for _, m := range g.Members {
		if m.Name == name {
			return m.ID
		}
	}
	t.Fatalf("no member named %s in group", name)
	return ""
}

func addExpense(t *testing.T, c *clients, groupID string, in api.ExpenseInput) *connect.Response[api.AddExpenseResponse] {
	t.Helper()

	resp, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
		GroupID:      groupID,
		ExpenseInput: in,
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if connectErr.Code() != want {
		t.Errorf("code = %v, want %v (%s)", connectErr.Code(), want, connectErr.Message())
	}
}

func assertAmount(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Errorf("%s = %.2f, want %.2f", label, got, want)
	}
}
