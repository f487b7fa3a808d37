// README: Handler tests over the in-memory order backend (auth, status mapping, quotes).
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carebridge/internal/http/handlers"
	httpmiddleware "carebridge/internal/http/middleware"
	"carebridge/internal/infra"
	"carebridge/internal/modules/order"
	"carebridge/internal/modules/pricing"
	"carebridge/internal/modules/user"
)

// tokenVerifier treats the bearer token as the uid.
type tokenVerifier struct{}

func (tokenVerifier) VerifyIDToken(_ context.Context, token string) (*infra.FirebaseToken, error) {
	if token == "bad" {
		return nil, errors.New("invalid token")
	}
	return &infra.FirebaseToken{UID: token, Claims: map[string]interface{}{}}, nil
}

func (v tokenVerifier) VerifySessionCookie(ctx context.Context, cookie string) (*infra.FirebaseToken, error) {
	return v.VerifyIDToken(ctx, cookie)
}

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := user.NewMemoryStore(
		user.User{ID: "nurse-a", Role: user.RolePartner, Profession: "Nurse", IsVerified: true},
		user.User{ID: "nurse-b", Role: user.RolePartner, Profession: "Nurse", IsVerified: true},
		user.User{ID: "nurse-pending-kyc", Role: user.RolePartner, Profession: "Nurse"},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orderSvc := order.NewService(order.NewMemoryStore(), users, nil, nil, logger)
	quoteHandler := handlers.NewQuoteHandler(pricing.NewService(nil, "INR"))

	r := gin.New()
	r.GET("/nursing-prices", quoteHandler.NursingPrices)
	r.POST("/quotes/nursing", quoteHandler.Nursing)
	r.POST("/quotes/ambulance", quoteHandler.Ambulance)

	g := r.Group("/service-orders", httpmiddleware.Auth(tokenVerifier{}))
	oh := handlers.NewOrderHandler(orderSvc)
	g.POST("", oh.Create)
	g.GET("/:id", oh.Get)
	ph := handlers.NewPartnerHandler(orderSvc)
	g.GET("", ph.List)
	g.POST("/:id/accept", ph.Accept)
	g.POST("/:id/decline", ph.Decline)
	g.POST("/:id/complete", ph.Complete)
	g.POST("/:id/release", ph.Release)
	g.POST("/:id/rate-user", ph.Rate)
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}, uid string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+uid)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type orderEnvelope struct {
	Order struct {
		ID                 string  `json:"id"`
		Status             string  `json:"status"`
		AssignedEngineerID *string `json:"assigned_engineer_id"`
		UserRating         *int    `json:"user_rating"`
	} `json:"order"`
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) orderEnvelope {
	t.Helper()
	var env orderEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func createOrder(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/service-orders", map[string]any{
		"patient_name":     "Ravi",
		"patient_contact":  "+91 90000 00000",
		"service_type":     "Home visit",
		"service_category": "Nursing",
		"quoted_price":     1440,
	}, "patient-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decodeOrder(t, w)
	require.Equal(t, "pending", env.Order.Status)
	return env.Order.ID
}

func TestUnauthenticated(t *testing.T) {
	r := buildTestRouter(t)

	w := doRequest(r, http.MethodGet, "/service-orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodPost, "/service-orders/abc/accept", nil, "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreate_Validation(t *testing.T) {
	r := buildTestRouter(t)
	w := doRequest(r, http.MethodPost, "/service-orders", map[string]any{"service_category": "Nursing"}, "patient-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcceptFlow(t *testing.T) {
	r := buildTestRouter(t)
	id := createOrder(t, r)

	w := doRequest(r, http.MethodGet, "/service-orders", nil, "nurse-a")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/accept", map[string]any{"service_type": "Night nurse"}, "nurse-a")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decodeOrder(t, w)
	assert.Equal(t, "accepted", env.Order.Status)
	require.NotNil(t, env.Order.AssignedEngineerID)
	assert.Equal(t, "nurse-a", *env.Order.AssignedEngineerID)

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/accept", nil, "nurse-b")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, http.MethodGet, "/service-orders", nil, "nurse-b")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), id)

	w = doRequest(r, http.MethodGet, "/service-orders/"+id, nil, "nurse-b")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doRequest(r, http.MethodGet, "/service-orders/"+id, nil, "patient-1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccept_ChunkedEmptyBody(t *testing.T) {
	r := buildTestRouter(t)
	id := createOrder(t, r)

	req := httptest.NewRequest(http.MethodPost, "/service-orders/"+id+"/accept", io.NopCloser(bytes.NewReader(nil)))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer nurse-a")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "accepted", decodeOrder(t, w).Order.Status)
}

func TestAccept_MalformedBody(t *testing.T) {
	r := buildTestRouter(t)
	id := createOrder(t, r)

	req := httptest.NewRequest(http.MethodPost, "/service-orders/"+id+"/accept", bytes.NewBufferString(`{"service_type":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer nurse-a")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccept_KYCRequired(t *testing.T) {
	r := buildTestRouter(t)
	id := createOrder(t, r)

	w := doRequest(r, http.MethodPost, "/service-orders/"+id+"/accept", nil, "nurse-pending-kyc")
	require.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["requires_kyc"])
	assert.Equal(t, "KYC verification required", body["error"])
}

func TestAccept_NotFound(t *testing.T) {
	r := buildTestRouter(t)
	w := doRequest(r, http.MethodPost, "/service-orders/missing/accept", nil, "nurse-a")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompleteAndRelease(t *testing.T) {
	r := buildTestRouter(t)
	id := createOrder(t, r)

	w := doRequest(r, http.MethodPost, "/service-orders/"+id+"/release", nil, "nurse-a")
	assert.Equal(t, http.StatusNotFound, w.Code, "unassigned order cannot be released")

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/accept", nil, "nurse-a")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/complete", nil, "nurse-b")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/complete", nil, "nurse-a")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decodeOrder(t, w).Order.Status)

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/release", nil, "nurse-a")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "only accepted orders can be released")
}

func TestDecline(t *testing.T) {
	r := buildTestRouter(t)
	id := createOrder(t, r)

	w := doRequest(r, http.MethodPost, "/service-orders/"+id+"/accept", nil, "nurse-a")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/decline", nil, "nurse-b")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", decodeOrder(t, w).Order.Status, "non-assignee decline is a no-op")

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/decline", nil, "nurse-a")
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeOrder(t, w)
	assert.Equal(t, "pending", env.Order.Status)
	assert.Nil(t, env.Order.AssignedEngineerID)
}

func TestRate(t *testing.T) {
	r := buildTestRouter(t)
	id := createOrder(t, r)
	w := doRequest(r, http.MethodPost, "/service-orders/"+id+"/accept", nil, "nurse-a")
	require.Equal(t, http.StatusOK, w.Code)

	for _, bad := range []any{4.5, 0, 6, "five", nil} {
		w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/rate-user", map[string]any{"rating": bad}, "nurse-a")
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %v", bad)
	}

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/rate-user", map[string]any{"rating": 5, "review": "Helpful"}, "nurse-b")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodPost, "/service-orders/"+id+"/rate-user", map[string]any{"rating": 5, "review": "Helpful"}, "nurse-a")
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeOrder(t, w)
	require.NotNil(t, env.Order.UserRating)
	assert.Equal(t, 5, *env.Order.UserRating)
}

func TestQuoteNursing(t *testing.T) {
	r := buildTestRouter(t)
	w := doRequest(r, http.MethodPost, "/quotes/nursing", map[string]any{
		"serviceCode": "nurse-12h",
		"city":        "Hyderabad",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var q map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, float64(1440), q["finalPrice"])
	assert.Equal(t, "tier-1", q["cityTier"])
}

func TestQuoteNursing_WithAddOns(t *testing.T) {
	r := buildTestRouter(t)
	w := doRequest(r, http.MethodPost, "/quotes/nursing", map[string]any{
		"basePrice":   1000,
		"city":        "Visakhapatnam",
		"isNightDuty": true,
		"isEmergency": true,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var q map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, float64(1656), q["finalPrice"])
}

func TestQuoteAmbulance_Errors(t *testing.T) {
	r := buildTestRouter(t)

	w := doRequest(r, http.MethodPost, "/quotes/ambulance", map[string]any{"ambulanceType": "hovercraft", "distanceKm": 3}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/quotes/ambulance", map[string]any{"ambulanceType": "bls"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "no distance and no coordinates")
}

func TestNursingPrices(t *testing.T) {
	r := buildTestRouter(t)
	w := doRequest(r, http.MethodGet, "/nursing-prices", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Services []pricing.CatalogItem `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Services, 8)
}
