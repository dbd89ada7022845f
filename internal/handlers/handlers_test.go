package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/apperr"
	"afisha/internal/models"
	"afisha/internal/service"
)

type stubUsers struct {
	users  map[int64]models.User
	nextID int64
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: make(map[int64]models.User), nextID: 1}
}

func (s *stubUsers) Create(_ context.Context, user *models.User) error {
	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = *user
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *stubUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubUsers) List(_ context.Context, ids []int64, from, size int) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUsers) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

type stubCategories struct {
	categories map[int64]models.Category
	inUse      map[int64]bool
	nextID     int64
}

func newStubCategories() *stubCategories {
	return &stubCategories{
		categories: make(map[int64]models.Category),
		inUse:      make(map[int64]bool),
		nextID:     1,
	}
}

func (s *stubCategories) Create(_ context.Context, category *models.Category) error {
	category.ID = s.nextID
	s.nextID++
	s.categories[category.ID] = *category
	return nil
}

func (s *stubCategories) GetByID(_ context.Context, id int64) (*models.Category, error) {
	if c, ok := s.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *stubCategories) ExistsByName(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, c := range s.categories {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubCategories) Update(_ context.Context, category *models.Category) error {
	s.categories[category.ID] = *category
	return nil
}

func (s *stubCategories) InUse(_ context.Context, id int64) (bool, error) {
	return s.inUse[id], nil
}

func (s *stubCategories) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := s.categories[id]; !ok {
		return false, nil
	}
	delete(s.categories, id)
	return true, nil
}

func (s *stubCategories) List(_ context.Context, from, size int) ([]models.Category, error) {
	var out []models.Category
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

type fixture struct {
	router     *gin.Engine
	users      *stubUsers
	categories *stubCategories
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)

	users := newStubUsers()
	categories := newStubCategories()
	h := NewHandlers(&service.Services{
		Users:      service.NewUserService(users),
		Categories: service.NewCategoryService(categories),
	}, nil)

	r := gin.New()
	r.POST("/admin/users", h.CreateUser)
	r.GET("/admin/users", h.ListUsers)
	r.DELETE("/admin/users/:userId", h.DeleteUser)
	r.POST("/admin/categories", h.CreateCategory)
	r.PATCH("/admin/categories/:catId", h.UpdateCategory)
	r.DELETE("/admin/categories/:catId", h.DeleteCategory)
	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:catId", h.GetCategory)

	return &fixture{router: r, users: users, categories: categories}
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateUser(t *testing.T) {
	f := newFixture()

	w := f.do("POST", "/admin/users", gin.H{"email": "ann@example.com", "name": "Ann"})

	assert.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "ann@example.com", user.Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newFixture()
	f.do("POST", "/admin/users", gin.H{"email": "ann@example.com", "name": "Ann"})

	w := f.do("POST", "/admin/users", gin.H{"email": "ann@example.com", "name": "Another Ann"})

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperr.ReasonUserExists, resp.Reason)
}

func TestCreateUserRejectsInvalidEmail(t *testing.T) {
	f := newFixture()

	w := f.do("POST", "/admin/users", gin.H{"email": "not-an-email", "name": "Ann"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture()
	f.do("POST", "/admin/users", gin.H{"email": "ann@example.com", "name": "Ann"})

	w := f.do("DELETE", "/admin/users/1", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, f.users.users)
}

func TestDeleteUserNotFound(t *testing.T) {
	f := newFixture()

	w := f.do("DELETE", "/admin/users/42", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperr.ReasonUserNotFound, resp.Reason)
}

func TestDeleteUserRejectsBadID(t *testing.T) {
	f := newFixture()

	w := f.do("DELETE", "/admin/users/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsersRejectsBadPagination(t *testing.T) {
	f := newFixture()

	w := f.do("GET", "/admin/users?from=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do("GET", "/admin/users?size=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsersRejectsBadIDs(t *testing.T) {
	f := newFixture()

	w := f.do("GET", "/admin/users?ids=1,two", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsersEmpty(t *testing.T) {
	f := newFixture()

	w := f.do("GET", "/admin/users", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestUpdateCategory(t *testing.T) {
	f := newFixture()
	f.do("POST", "/admin/categories", gin.H{"name": "music"})

	w := f.do("PATCH", "/admin/categories/1", gin.H{"name": "concerts"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "concerts", f.categories.categories[1].Name)
}

func TestCreateCategoryNameTaken(t *testing.T) {
	f := newFixture()
	f.do("POST", "/admin/categories", gin.H{"name": "music"})

	w := f.do("POST", "/admin/categories", gin.H{"name": "music"})

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperr.ReasonCategoryNameTaken, resp.Reason)
}

func TestDeleteCategoryInUse(t *testing.T) {
	f := newFixture()
	f.do("POST", "/admin/categories", gin.H{"name": "music"})
	f.categories.inUse[1] = true

	w := f.do("DELETE", "/admin/categories/1", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperr.ReasonCategoryInUse, resp.Reason)
}

func TestGetCategoryNotFound(t *testing.T) {
	f := newFixture()

	w := f.do("GET", "/categories/7", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, apperr.ReasonCategoryNotFound, resp.Reason)
}
