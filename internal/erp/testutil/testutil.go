package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/entity"
	"github.com/moneerbcm20-rgb/decora-erp/internal/erp/store"
	"github.com/moneerbcm20-rgb/decora-erp/internal/middleware"
)

const JWTSecret = "decora-erp-test-secret"

// SetupTestStore opens a store backed by a temp snapshot file
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	st, err := store.Open(path, nil)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	return st
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, role string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"uid":  userID,
		"name": name,
		"role": role,
		"iss":  "decora-erp",
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
		"jti":  fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default admin test user
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "Test Admin", "admin")
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedCustomer creates a test customer in the store
func SeedCustomer(t *testing.T, st *store.Store, name string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{
		ID:        fmt.Sprintf("cust-%d", time.Now().UnixNano()),
		Name:      name,
		Phone:     "0500000000",
		CreatedAt: entity.Now(),
	}
	if err := st.CreateCustomer(customer); err != nil {
		t.Fatalf("Failed to seed test customer: %v", err)
	}
	return customer
}

// SeedProduct creates a test product in the store
func SeedProduct(t *testing.T, st *store.Store, name string, productionDays int) *entity.Product {
	t.Helper()
	product := &entity.Product{
		ID:             fmt.Sprintf("prod-%d", time.Now().UnixNano()),
		Name:           name,
		ProductionDays: productionDays,
		CreatedAt:      entity.Now(),
	}
	if err := st.CreateProduct(product); err != nil {
		t.Fatalf("Failed to seed test product: %v", err)
	}
	return product
}

// SeedOrder creates a test order in the store
func SeedOrder(t *testing.T, st *store.Store, customerID string, delivery time.Time, status string) *entity.Order {
	t.Helper()
	order := &entity.Order{
		ID:           fmt.Sprintf("order-%d", time.Now().UnixNano()),
		CustomerID:   customerID,
		OrderDate:    entity.Now(),
		DeliveryDate: entity.NewTime(entity.Midnight(delivery)),
		Status:       status,
		Price:        1000,
		CreatedAt:    entity.Now(),
		UpdatedAt:    entity.Now(),
	}
	if err := st.CreateOrder(order); err != nil {
		t.Fatalf("Failed to seed test order: %v", err)
	}
	return order
}
