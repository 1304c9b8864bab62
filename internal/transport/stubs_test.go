package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"veganbite/internal/domain"
	"veganbite/internal/repository"
	"veganbite/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	errCategoryNotFound = fmt.Errorf("failed to delete category: %w", repository.ErrCategoryNotFound)
	errProductNotFound  = repository.ErrProductNotFound
)

// stubResolver accepts the fixed tokens used in handler tests.
type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	var principal domain.Principal
	switch token {
	case "customer-42":
		principal = domain.CustomerPrincipal{Customer: &domain.Customer{ID: 42, Name: "Hanako", Status: domain.CustomerStatusActive}}
	case "customer-7":
		principal = domain.CustomerPrincipal{Customer: &domain.Customer{ID: 7, Name: "Taro", Status: domain.CustomerStatusActive}}
	case "moderator":
		principal = domain.AdminPrincipal{Admin: &domain.Admin{ID: 2, Name: "Mod", Role: domain.AdminRoleModerator}}
	case "admin":
		principal = domain.AdminPrincipal{Admin: &domain.Admin{ID: 1, Name: "Ops", Role: domain.AdminRoleAdmin}}
	default:
		return nil, service.ErrUnauthorized
	}
	return &domain.Session{Principal: principal, TokenID: "jti-" + token}, nil
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router, guards Guards)
}

func newTestRouter(handlers ...routeRegistrar) http.Handler {
	r := chi.NewRouter()
	guards := NewGuards(stubResolver{}, zap.NewNop())
	for _, h := range handlers {
		h.RegisterRoutes(r, guards)
	}
	return r
}

func doRequest(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type stubCategoryService struct {
	categories map[int64]*domain.Category
}

func (s *stubCategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	if c, ok := s.categories[id]; ok {
		return c, nil
	}
	return nil, errCategoryNotFound
}

func (s *stubCategoryService) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	c := &domain.Category{ID: int64(len(s.categories) + 1), Name: input.Name, NameJa: input.NameJa, Slug: domain.Slugify(input.Name)}
	s.categories[c.ID] = c
	return c, nil
}

func (s *stubCategoryService) Update(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error) {
	if _, ok := s.categories[id]; !ok {
		return nil, errCategoryNotFound
	}
	c := &domain.Category{ID: id, Name: input.Name, NameJa: input.NameJa}
	s.categories[id] = c
	return c, nil
}

func (s *stubCategoryService) Delete(ctx context.Context, id int64) error {
	if _, ok := s.categories[id]; !ok {
		return errCategoryNotFound
	}
	delete(s.categories, id)
	return nil
}

type stubProductService struct {
	lastInput  domain.ProductInput
	createErr  error
	listArgs   [2]string
	products   map[int64]*domain.Product
	deletedIDs []int64
}

func (s *stubProductService) List(ctx context.Context, category, search string) ([]*domain.Product, error) {
	s.listArgs = [2]string{category, search}
	return []*domain.Product{}, nil
}

func (s *stubProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, errProductNotFound
}

func (s *stubProductService) Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	s.lastInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.Product{ID: 10, Name: input.Name, NameJa: input.NameJa, Categories: []domain.Category{}}, nil
}

func (s *stubProductService) Update(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	s.lastInput = input
	return &domain.Product{ID: id, Name: input.Name}, nil
}

func (s *stubProductService) Delete(ctx context.Context, id int64) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

type stubReviewService struct {
	createErr error
	deleteErr error
	callers   []domain.Principal
}

func (s *stubReviewService) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	if productID == 404 {
		return nil, errProductNotFound
	}
	return []*domain.Review{{ID: 1, ProductID: productID, Rating: 5}}, nil
}

func (s *stubReviewService) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Review, error) {
	return []*domain.Review{}, nil
}

func (s *stubReviewService) ListAll(ctx context.Context) ([]*domain.Review, error) {
	return []*domain.Review{}, nil
}

func (s *stubReviewService) Create(ctx context.Context, principal domain.Principal, productID int64, input domain.ReviewInput) (*domain.Review, error) {
	s.callers = append(s.callers, principal)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &domain.Review{ID: 99, ProductID: productID, CustomerID: principal.ID(), Rating: input.Rating, Comment: input.Comment}, nil
}

func (s *stubReviewService) Update(ctx context.Context, principal domain.Principal, reviewID int64, input domain.ReviewInput) (*domain.Review, error) {
	s.callers = append(s.callers, principal)
	return &domain.Review{ID: reviewID, Rating: input.Rating, Comment: input.Comment}, nil
}

func (s *stubReviewService) Delete(ctx context.Context, principal domain.Principal, reviewID int64) error {
	s.callers = append(s.callers, principal)
	return s.deleteErr
}

type stubFavoriteService struct {
	saved map[int64]bool
}

func (s *stubFavoriteService) List(ctx context.Context, principal domain.Principal) ([]*domain.Favorite, error) {
	out := []*domain.Favorite{}
	for id := range s.saved {
		out = append(out, &domain.Favorite{CustomerID: principal.ID(), ProductID: id})
	}
	return out, nil
}

func (s *stubFavoriteService) Add(ctx context.Context, principal domain.Principal, productID int64) (*domain.Favorite, bool, error) {
	if productID == 404 {
		return nil, false, errProductNotFound
	}
	created := !s.saved[productID]
	s.saved[productID] = true
	return &domain.Favorite{ID: productID, CustomerID: principal.ID(), ProductID: productID}, created, nil
}

func (s *stubFavoriteService) Remove(ctx context.Context, principal domain.Principal, productID int64) error {
	delete(s.saved, productID)
	return nil
}

type stubModerationService struct {
	banErr     error
	lastAdmin  *domain.Admin
	lastReason string
	lastDays   int
}

func (s *stubModerationService) ListCustomers(ctx context.Context) ([]*domain.ManagedCustomer, error) {
	return []*domain.ManagedCustomer{{Customer: domain.Customer{ID: 42, Status: domain.CustomerStatusActive}, ReviewCount: 3}}, nil
}

func (s *stubModerationService) GetCustomer(ctx context.Context, id int64) (*domain.ManagedCustomer, error) {
	return &domain.ManagedCustomer{Customer: domain.Customer{ID: id}}, nil
}

func (s *stubModerationService) Ban(ctx context.Context, admin *domain.Admin, customerID int64, reason string) (*domain.ManagedCustomer, error) {
	s.lastAdmin, s.lastReason = admin, reason
	if s.banErr != nil {
		return nil, s.banErr
	}
	return &domain.ManagedCustomer{Customer: domain.Customer{ID: customerID, Status: domain.CustomerStatusBanned, StatusReason: &reason}}, nil
}

func (s *stubModerationService) Suspend(ctx context.Context, admin *domain.Admin, customerID int64, days int, reason string) (*domain.ManagedCustomer, error) {
	s.lastAdmin, s.lastReason, s.lastDays = admin, reason, days
	return &domain.ManagedCustomer{Customer: domain.Customer{ID: customerID, Status: domain.CustomerStatusSuspended}}, nil
}

func (s *stubModerationService) Unban(ctx context.Context, admin *domain.Admin, customerID int64) (*domain.ManagedCustomer, error) {
	s.lastAdmin = admin
	return &domain.ManagedCustomer{Customer: domain.Customer{ID: customerID, Status: domain.CustomerStatusActive}}, nil
}

type stubAuthService struct {
	loginErr  error
	loggedOut []string
}

func (s *stubAuthService) LoginURL(ctx context.Context, audience domain.PrincipalKind) (string, error) {
	return "https://accounts.google.com/o/oauth2/auth?state=abc&audience=" + string(audience), nil
}

func (s *stubAuthService) CompleteLogin(ctx context.Context, audience domain.PrincipalKind, state, code string) (*service.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &service.LoginResult{Token: "signed.jwt.token"}, nil
}

func (s *stubAuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	return stubResolver{}.Resolve(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, session *domain.Session) error {
	s.loggedOut = append(s.loggedOut, session.TokenID)
	return nil
}
