package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"adorn-jewellery/internal/domain"
	"adorn-jewellery/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock repositories for testing

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
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

type mockProductRepository struct {
	products   map[uuid.UUID]*domain.Product
	lastFilter repository.ProductFilter
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug && p.IsAvailable {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) ListAvailable(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	m.lastFilter = filter
	return m.sorted(func(p *domain.Product) bool { return p.IsAvailable }), nil
}

func (m *mockProductRepository) ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	products := m.sorted(func(p *domain.Product) bool { return p.IsAvailable && p.IsFeatured })
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (m *mockProductRepository) ListRelated(ctx context.Context, product *domain.Product, limit int) ([]*domain.Product, error) {
	products := m.sorted(func(p *domain.Product) bool {
		return p.IsAvailable && p.CategoryID == product.CategoryID && p.ID != product.ID
	})
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (m *mockProductRepository) sorted(keep func(*domain.Product) bool) []*domain.Product {
	products := []*domain.Product{}
	for _, p := range m.products {
		if keep(p) {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products
}

type mockCategoryRepository struct {
	categories []*domain.Category
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.categories = append(m.categories, category)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type cartKey struct {
	user    uuid.UUID
	product uuid.UUID
}

type mockCartRepository struct {
	products *mockProductRepository
	items    map[cartKey]int
	order    []cartKey
}

func newMockCartRepository(products *mockProductRepository) *mockCartRepository {
	return &mockCartRepository{products: products, items: make(map[cartKey]int)}
}

func (m *mockCartRepository) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if _, ok := m.products.products[productID]; !ok {
		return repository.ErrProductNotFound
	}
	key := cartKey{userID, productID}
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = min(m.items[key]+quantity, domain.MaxLineQuantity)
	return nil
}

func (m *mockCartRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	key := cartKey{userID, productID}
	if _, ok := m.items[key]; !ok {
		return repository.ErrCartItemNotFound
	}
	m.items[key] = quantity
	return nil
}

func (m *mockCartRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	key := cartKey{userID, productID}
	if _, ok := m.items[key]; !ok {
		return repository.ErrCartItemNotFound
	}
	delete(m.items, key)
	return nil
}

func (m *mockCartRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for key := range m.items {
		if key.user == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockCartRepository) Lines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	for _, key := range m.order {
		quantity, ok := m.items[key]
		if !ok || key.user != userID {
			continue
		}
		p := m.products.products[key.product]
		lines = append(lines, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  quantity,
		})
	}
	return lines, nil
}

func (m *mockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	for key := range m.items {
		if key.user == userID {
			delete(m.items, key)
		}
	}
	return nil
}

type mockWishlistRepository struct {
	members map[cartKey]bool
}

func newMockWishlistRepository() *mockWishlistRepository {
	return &mockWishlistRepository{members: make(map[cartKey]bool)}
}

func (m *mockWishlistRepository) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	key := cartKey{userID, productID}
	if m.members[key] {
		delete(m.members, key)
		return false, nil
	}
	m.members[key] = true
	return true, nil
}

func (m *mockWishlistRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for key := range m.members {
		if key.user == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockWishlistRepository) Lines(ctx context.Context, userID uuid.UUID) ([]domain.WishlistLine, error) {
	lines := []domain.WishlistLine{}
	for key := range m.members {
		if key.user == userID {
			lines = append(lines, domain.WishlistLine{ProductID: key.product})
		}
	}
	return lines, nil
}

// mockOrderRepository prices lines from the product mock and keeps orders in memory
type mockOrderRepository struct {
	products *mockProductRepository
	cart     *mockCartRepository
	orders   map[string]*domain.Order
	// failures are returned by PlaceOrder, one per call, before the order is stored
	failures []error
	calls    int
}

func newMockOrderRepository(products *mockProductRepository, cart *mockCartRepository) *mockOrderRepository {
	return &mockOrderRepository{products: products, cart: cart, orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepository) PlaceOrder(ctx context.Context, params repository.PlaceOrderParams) error {
	m.calls++
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return err
	}

	order := params.Order
	total := decimal.Zero
	items := []domain.OrderItem{}
	for _, line := range domain.MergeLines(params.Lines) {
		p, ok := m.products.products[line.ProductID]
		if !ok {
			return repository.ErrProductNotFound
		}
		item := domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}
	if params.ExpectedTotal != nil && !params.ExpectedTotal.Equal(total) {
		return repository.ErrTotalMismatch
	}

	order.TotalAmount = total
	order.Items = items
	m.orders[order.OrderNumber] = order
	if params.ClearCart && order.UserID != nil {
		_ = m.cart.Clear(ctx, *order.UserID)
	}
	return nil
}

func (m *mockOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, ok := m.orders[orderNumber]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, o := range m.orders {
		if o.UserID != nil && *o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) List(ctx context.Context, status *domain.OrderStatus) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, o := range m.orders {
		if status == nil || o.Status == *status {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, orderNumber string, status domain.OrderStatus) error {
	order, ok := m.orders[orderNumber]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

type mockContactRepository struct {
	messages map[uuid.UUID]*domain.ContactMessage
	err      error
}

func newMockContactRepository() *mockContactRepository {
	return &mockContactRepository{messages: make(map[uuid.UUID]*domain.ContactMessage)}
}

func (m *mockContactRepository) Create(ctx context.Context, message *domain.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.messages[message.ID] = message
	return nil
}

func (m *mockContactRepository) List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error) {
	messages := []*domain.ContactMessage{}
	for _, msg := range m.messages {
		if !unreadOnly || !msg.IsRead {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func (m *mockContactRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrContactMessageNotFound
	}
	msg.IsRead = true
	return nil
}

// mockNotifier records notifications and reports the configured outcome
type mockNotifier struct {
	mu       sync.Mutex
	orders   []*domain.Order
	contacts []*domain.ContactMessage
	fail     bool
}

func (m *mockNotifier) OrderPlaced(ctx context.Context, order *domain.Order) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order)
	return !m.fail
}

func (m *mockNotifier) ContactReceived(ctx context.Context, message *domain.ContactMessage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, message)
	return !m.fail
}

func newTestProduct(name, price string, categoryID uuid.UUID) *domain.Product {
	return &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        domain.Slugify(name),
		CategoryID:  categoryID,
		Price:       decimal.RequireFromString(price),
		Stock:       10,
		IsAvailable: true,
	}
}
