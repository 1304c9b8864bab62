package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"veganbite/internal/auth"
	"veganbite/internal/domain"
	"veganbite/internal/events"
	"veganbite/internal/repository"
)

// Mock repositories for testing. They keep state in maps and mirror the
// behavior of the Postgres repositories closely enough for service tests.

type mockCategoryRepository struct {
	categories map[int64]*domain.Category
	nextID     int64
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[int64]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m.nextID++
	c.ID = m.nextID
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	m.categories[c.ID] = c
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

func (m *mockCategoryRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, id := range ids {
		if c, ok := m.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type mockProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
	filters  []domain.ProductFilter
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[int64]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product, categoryIDs []int64) error {
	m.nextID++
	p.ID = m.nextID
	p.Categories = make([]domain.Category, len(categoryIDs))
	for i, id := range categoryIDs {
		p.Categories[i] = domain.Category{ID: id}
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product, categoryIDs []int64) error {
	existing, ok := m.products[p.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Rating, p.ReviewCount = existing.Rating, existing.ReviewCount
	p.Categories = make([]domain.Category, len(categoryIDs))
	for i, id := range categoryIDs {
		p.Categories[i] = domain.Category{ID: id}
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	m.filters = append(m.filters, filter)
	out := []*domain.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

// mockReviewRepository recomputes product aggregates on every write, like
// the transactional repository does.
type mockReviewRepository struct {
	mu        sync.Mutex
	reviews   map[int64]*domain.Review
	products  *mockProductRepository
	customers *mockCustomerRepository
	nextID    int64
}

func newMockReviewRepository(products *mockProductRepository, customers *mockCustomerRepository) *mockReviewRepository {
	return &mockReviewRepository{
		reviews:   make(map[int64]*domain.Review),
		products:  products,
		customers: customers,
	}
}

func (m *mockReviewRepository) Create(ctx context.Context, r *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products.products[r.ProductID]; !ok {
		return repository.ErrProductNotFound
	}
	for _, existing := range m.reviews {
		if existing.ProductID == r.ProductID && existing.CustomerID == r.CustomerID {
			return repository.ErrDuplicateReview
		}
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	if c, ok := m.customers.customers[r.CustomerID]; ok {
		r.Customer = c.Summary()
	}
	stored := *r
	m.reviews[r.ID] = &stored
	m.recompute(r.ProductID)
	return nil
}

func (m *mockReviewRepository) Update(ctx context.Context, r *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reviews[r.ID]
	if !ok {
		return repository.ErrReviewNotFound
	}
	existing.Rating = r.Rating
	existing.Comment = r.Comment
	existing.UpdatedAt = time.Now()
	m.recompute(existing.ProductID)
	return nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id int64) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	delete(m.reviews, id)
	m.recompute(existing.ProductID)
	return existing, nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockReviewRepository) FindByProductAndCustomer(ctx context.Context, productID, customerID int64) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reviews {
		if r.ProductID == productID && r.CustomerID == customerID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	return m.filter(func(r *domain.Review) bool { return r.ProductID == productID }), nil
}

func (m *mockReviewRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Review, error) {
	return m.filter(func(r *domain.Review) bool { return r.CustomerID == customerID }), nil
}

func (m *mockReviewRepository) ListAll(ctx context.Context) ([]*domain.Review, error) {
	return m.filter(func(*domain.Review) bool { return true }), nil
}

func (m *mockReviewRepository) filter(keep func(*domain.Review) bool) []*domain.Review {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*domain.Review{}
	for _, r := range m.reviews {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *mockReviewRepository) recompute(productID int64) {
	var ratings []int
	for _, r := range m.reviews {
		if r.ProductID == productID {
			ratings = append(ratings, r.Rating)
		}
	}
	agg := domain.AggregateRatings(ratings)
	if p, ok := m.products.products[productID]; ok {
		p.Rating = agg.Rating
		p.ReviewCount = agg.ReviewCount
	}
}

type mockFavoriteRepository struct {
	favorites map[[2]int64]*domain.Favorite
	products  *mockProductRepository
	nextID    int64
}

func newMockFavoriteRepository(products *mockProductRepository) *mockFavoriteRepository {
	return &mockFavoriteRepository{favorites: make(map[[2]int64]*domain.Favorite), products: products}
}

func (m *mockFavoriteRepository) Add(ctx context.Context, customerID, productID int64) (*domain.Favorite, bool, error) {
	product, ok := m.products.products[productID]
	if !ok {
		return nil, false, repository.ErrProductNotFound
	}
	key := [2]int64{customerID, productID}
	if fav, ok := m.favorites[key]; ok {
		return fav, false, nil
	}
	m.nextID++
	fav := &domain.Favorite{ID: m.nextID, CustomerID: customerID, ProductID: productID, Product: product, CreatedAt: time.Now()}
	m.favorites[key] = fav
	return fav, true, nil
}

func (m *mockFavoriteRepository) Remove(ctx context.Context, customerID, productID int64) error {
	delete(m.favorites, [2]int64{customerID, productID})
	return nil
}

func (m *mockFavoriteRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Favorite, error) {
	out := []*domain.Favorite{}
	for _, fav := range m.favorites {
		if fav.CustomerID == customerID {
			out = append(out, fav)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type mockCustomerRepository struct {
	customers map[int64]*domain.Customer
	nextID    int64
	moderateN int
	upsertErr error
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{customers: make(map[int64]*domain.Customer)}
}

func (m *mockCustomerRepository) add(name string) *domain.Customer {
	m.nextID++
	c := &domain.Customer{
		ID:          m.nextID,
		GoogleID:    "google-" + name,
		Name:        name,
		Email:       name + "@example.com",
		Status:      domain.CustomerStatusActive,
		MemberSince: time.Now(),
	}
	m.customers[c.ID] = c
	return c
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return c, nil
}

func (m *mockCustomerRepository) UpsertByGoogleID(ctx context.Context, customer *domain.Customer) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, c := range m.customers {
		if c.GoogleID == customer.GoogleID {
			c.Name, c.Email, c.Avatar = customer.Name, customer.Email, customer.Avatar
			*customer = *c
			return nil
		}
	}
	m.nextID++
	customer.ID = m.nextID
	customer.Status = domain.CustomerStatusActive
	stored := *customer
	m.customers[customer.ID] = &stored
	return nil
}

func (m *mockCustomerRepository) ListManaged(ctx context.Context) ([]*domain.ManagedCustomer, error) {
	out := []*domain.ManagedCustomer{}
	for _, c := range m.customers {
		out = append(out, &domain.ManagedCustomer{Customer: *c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCustomerRepository) FindManagedByID(ctx context.Context, id int64) (*domain.ManagedCustomer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return &domain.ManagedCustomer{Customer: *c}, nil
}

func (m *mockCustomerRepository) Moderate(ctx context.Context, id int64, change func(*domain.Customer) error) (*domain.ManagedCustomer, error) {
	m.moderateN++
	c, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	working := *c
	if err := change(&working); err != nil {
		return nil, err
	}
	*c = working
	return &domain.ManagedCustomer{Customer: working}, nil
}

type mockAdminRepository struct {
	admins map[int64]*domain.Admin
}

func newMockAdminRepository(admins ...*domain.Admin) *mockAdminRepository {
	m := &mockAdminRepository{admins: make(map[int64]*domain.Admin)}
	for _, a := range admins {
		m.admins[a.ID] = a
	}
	return m
}

func (m *mockAdminRepository) FindByID(ctx context.Context, id int64) (*domain.Admin, error) {
	a, ok := m.admins[id]
	if !ok {
		return nil, repository.ErrAdminNotFound
	}
	return a, nil
}

func (m *mockAdminRepository) FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*domain.Admin, error) {
	for _, a := range m.admins {
		if a.GoogleID != nil && *a.GoogleID == googleID {
			return a, nil
		}
	}
	for _, a := range m.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, repository.ErrAdminNotFound
}

func (m *mockAdminRepository) LinkGoogleProfile(ctx context.Context, admin *domain.Admin) error {
	if _, ok := m.admins[admin.ID]; !ok {
		return repository.ErrAdminNotFound
	}
	m.admins[admin.ID] = admin
	return nil
}

type mockSessionRepository struct {
	revoked map[string]time.Duration
	states  map[string]string
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{revoked: make(map[string]time.Duration), states: make(map[string]string)}
}

func (m *mockSessionRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl > 0 {
		m.revoked[tokenID] = ttl
	}
	return nil
}

func (m *mockSessionRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func (m *mockSessionRepository) SaveOAuthState(ctx context.Context, state, audience string, ttl time.Duration) error {
	m.states[state] = audience
	return nil
}

func (m *mockSessionRepository) ConsumeOAuthState(ctx context.Context, state string) (string, error) {
	audience, ok := m.states[state]
	if !ok {
		return "", repository.ErrOAuthStateNotFound
	}
	delete(m.states, state)
	return audience, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

type fakeIdentityProvider struct {
	user *auth.GoogleUser
	err  error
}

func (f *fakeIdentityProvider) AuthCodeURL(audience domain.PrincipalKind, state string) string {
	return "https://accounts.example.com/auth?audience=" + string(audience) + "&state=" + state
}

func (f *fakeIdentityProvider) Exchange(ctx context.Context, audience domain.PrincipalKind, code string) (*auth.GoogleUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}
