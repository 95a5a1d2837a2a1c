package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/miloszkon/supportbot/internal/api/http/handlers"
	"github.com/miloszkon/supportbot/internal/auth"
	"github.com/miloszkon/supportbot/internal/clock"
	"github.com/miloszkon/supportbot/internal/domain"
	"github.com/miloszkon/supportbot/internal/events"
	"github.com/miloszkon/supportbot/internal/platform"
	"github.com/miloszkon/supportbot/internal/service"
	"github.com/miloszkon/supportbot/internal/store"
)

type stubPlatform struct{}

func (stubPlatform) CreateSupportChannel(_ context.Context, requesterID, _, _ string) (domain.ChannelHandle, error) {
	return domain.ChannelHandle(fmt.Sprintf("chan-%s", requesterID)), nil
}

func (stubPlatform) DeleteChannel(context.Context, domain.ChannelHandle) error { return nil }

func (stubPlatform) SendToChannel(context.Context, domain.ChannelHandle, platform.Content, *platform.ReplyBinding, *platform.ChannelActions) error {
	return nil
}

func (stubPlatform) SendDirectMessage(context.Context, string, platform.Content) error { return nil }

type apiFixture struct {
	app       *fiber.App
	lifecycle *service.LifecycleManager
	tokens    *auth.TokenManager
	clk       *clock.Manual
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	tickets := store.NewTicketStore()
	pending := store.NewPendingTopicStore()
	lifecycle := service.NewLifecycleManager(service.LifecycleConfig{
		SupportCategory:     "Support",
		InactivityThreshold: 15 * time.Minute,
		PollInterval:        time.Minute,
		DeletionDelay:       5 * time.Minute,
	}, service.LifecycleDependencies{
		Tickets:    tickets,
		Channels:   stubPlatform{},
		Notifier:   stubPlatform{},
		Identity:   platform.NewStaticIdentity([]string{"op1"}),
		Dispatcher: events.NewInMemoryDispatcher(),
		Clock:      clk,
		Logger:     zap.NewNop(),
	})

	tokens := auth.NewTokenManager("test-secret", 60)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, zap.NewNop(), nil)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("supportbot", "test", nil),
		Ops:            handlers.NewOpsHandler(lifecycle, pending),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	return &apiFixture{app: app, lifecycle: lifecycle, tokens: tokens, clk: clk}
}

func (f *apiFixture) request(t *testing.T, method, path, token string) *stdhttp.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestHealthLive(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, stdhttp.MethodGet, "/health/live", "")
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestListTicketsRequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, stdhttp.MethodGet, "/ops/tickets", "")
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestListTicketsWithOperatorToken(t *testing.T) {
	f := newAPIFixture(t)
	if _, err := f.lifecycle.CreateTicket(context.Background(), "u1", "Alice"); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	token, _, err := f.tokens.GenerateToken("op1", auth.RoleOperator)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	resp := f.request(t, stdhttp.MethodGet, "/ops/tickets", token)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCloseTicketRequiresManagementRole(t *testing.T) {
	f := newAPIFixture(t)
	if _, err := f.lifecycle.CreateTicket(context.Background(), "u1", "Alice"); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	token, _, err := f.tokens.GenerateToken("op1", auth.RoleOperator)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	resp := f.request(t, stdhttp.MethodPost, "/ops/tickets/u1/close", token)
	if resp.StatusCode != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if ticket, ok := f.lifecycle.Tickets().Get("u1"); !ok || ticket.Status != domain.TicketStatusOpen {
		t.Fatal("ticket state changed by rejected request")
	}
}

func TestCloseTicketWithManagementToken(t *testing.T) {
	f := newAPIFixture(t)
	if _, err := f.lifecycle.CreateTicket(context.Background(), "u1", "Alice"); err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	token, _, err := f.tokens.GenerateToken("op1", auth.RoleManagement)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	resp := f.request(t, stdhttp.MethodPost, "/ops/tickets/u1/close", token)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	ticket, ok := f.lifecycle.Tickets().Get("u1")
	if !ok {
		t.Fatal("ticket removed before deletion delay")
	}
	if ticket.Status != domain.TicketStatusPendingClosure {
		t.Fatalf("status = %s, want PENDING_CLOSURE", ticket.Status)
	}
}

func TestCloseUnknownTicketReturnsNotFound(t *testing.T) {
	f := newAPIFixture(t)

	token, _, err := f.tokens.GenerateToken("op1", auth.RoleManagement)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	resp := f.request(t, stdhttp.MethodPost, "/ops/tickets/ghost/close", token)
	if resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
