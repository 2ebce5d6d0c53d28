package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/middleware"
	"adorn-jewellery/internal/repository"
	"adorn-jewellery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mock repositories for the account flow

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[strings.ToLower(user.Email)]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[strings.ToLower(user.Email)] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[strings.ToLower(email)]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func newTestUserService() service.UserService {
	return service.NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), service.TokenSettings{
		Secret:     "test-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
}

// Stub services. Each records its last input and returns the configured
// result or err.

type stubCatalogService struct {
	home       *service.HomePage
	shop       *service.ShopPage
	product    *service.ProductPage
	categories []*domain.Category
	err        error
	lastFilter repository.ProductFilter
	lastSlug   string
}

func (s *stubCatalogService) Home(ctx context.Context) (*service.HomePage, error) {
	return s.home, s.err
}

func (s *stubCatalogService) Shop(ctx context.Context, filter repository.ProductFilter) (*service.ShopPage, error) {
	s.lastFilter = filter
	return s.shop, s.err
}

func (s *stubCatalogService) ProductDetail(ctx context.Context, slug string) (*service.ProductPage, error) {
	s.lastSlug = slug
	return s.product, s.err
}

func (s *stubCatalogService) Categories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories, s.err
}

type stubCartService struct {
	count        int
	view         *service.CartView
	merge        *service.MergeResult
	err          error
	lastUser     uuid.UUID
	lastProduct  uuid.UUID
	lastQuantity int
	lastLines    []domain.LineRequest
}

func (s *stubCartService) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (int, error) {
	s.lastUser, s.lastProduct, s.lastQuantity = userID, productID, quantity
	return s.count, s.err
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (int, error) {
	s.lastUser, s.lastProduct, s.lastQuantity = userID, productID, quantity
	return s.count, s.err
}

func (s *stubCartService) Remove(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	s.lastUser, s.lastProduct = userID, productID
	return s.count, s.err
}

func (s *stubCartService) Merge(ctx context.Context, userID uuid.UUID, lines []domain.LineRequest) (*service.MergeResult, error) {
	s.lastUser, s.lastLines = userID, lines
	return s.merge, s.err
}

func (s *stubCartService) Items(ctx context.Context, userID uuid.UUID) (*service.CartView, error) {
	s.lastUser = userID
	return s.view, s.err
}

func (s *stubCartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	s.lastUser = userID
	return s.count, s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	s.lastUser = userID
	return s.err
}

type stubWishlistService struct {
	toggle *service.ToggleResult
	lines  []domain.WishlistLine
	count  int
	err    error
}

func (s *stubWishlistService) Toggle(ctx context.Context, userID, productID uuid.UUID) (*service.ToggleResult, error) {
	return s.toggle, s.err
}

func (s *stubWishlistService) Items(ctx context.Context, userID uuid.UUID) ([]domain.WishlistLine, error) {
	return s.lines, s.err
}

func (s *stubWishlistService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.count, s.err
}

type stubOrderService struct {
	order      *domain.Order
	orders     []*domain.Order
	err        error
	lastUser   uuid.UUID
	lastInput  service.CheckoutInput
	lastNumber string
	lastStatus string
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input service.CheckoutInput) (*domain.Order, error) {
	s.lastUser, s.lastInput = userID, input
	return s.order, s.err
}

func (s *stubOrderService) History(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	s.lastUser = userID
	return s.orders, s.err
}

func (s *stubOrderService) GetOrder(ctx context.Context, userID uuid.UUID, orderNumber string) (*domain.Order, error) {
	s.lastUser, s.lastNumber = userID, orderNumber
	return s.order, s.err
}

func (s *stubOrderService) ListOrders(ctx context.Context, status string) ([]*domain.Order, error) {
	s.lastStatus = status
	return s.orders, s.err
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderNumber, status string) (*domain.Order, error) {
	s.lastNumber, s.lastStatus = orderNumber, status
	return s.order, s.err
}

type stubContactService struct {
	messages   []*domain.ContactMessage
	err        error
	lastInput  service.ContactInput
	lastUnread bool
	lastID     uuid.UUID
}

func (s *stubContactService) Submit(ctx context.Context, input service.ContactInput) (*domain.ContactMessage, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ContactMessage{ID: uuid.New(), Name: input.Name, Email: input.Email, Subject: input.Subject, Message: input.Message}, nil
}

func (s *stubContactService) List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error) {
	s.lastUnread = unreadOnly
	return s.messages, s.err
}

func (s *stubContactService) MarkRead(ctx context.Context, id uuid.UUID) error {
	s.lastID = id
	return s.err
}

// Helpers

// asUser stands in for AuthMiddleware and authenticates every request as userID
func asUser(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), userID, role)))
		})
	}
}

func passThrough(next http.Handler) http.Handler { return next }

func newRouter() chi.Router { return chi.NewRouter() }

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(raw)
}

func serve(h http.Handler, method, target string, body *bytes.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func errorMessage(body map[string]interface{}) string {
	errBody, _ := body["error"].(map[string]interface{})
	msg, _ := errBody["message"].(string)
	return msg
}

func testProduct(name, price string) *domain.Product {
	return &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        domain.Slugify(name),
		Price:       decimal.RequireFromString(price),
		Stock:       5,
		IsAvailable: true,
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }
