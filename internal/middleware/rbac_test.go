package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tuition-center-api/internal/models"
	appErrors "github.com/noah-isme/tuition-center-api/pkg/errors"
)

type fakeValidator struct {
	tokens map[string]*models.JWTClaims
}

func (f fakeValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := f.tokens[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var testTokens = fakeValidator{tokens: map[string]*models.JWTClaims{
	"admin":     {UserID: "a1", Role: models.RoleAdmin},
	"staff":     {UserID: "s1", Role: models.RoleStaff},
	"superuser": {UserID: "r1", Role: models.RoleStaff, IsSuperuser: true},
	"nobody":    {UserID: "n1", Role: "visitor"},
}}

func newGatedRouter(gate gin.HandlerFunc, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/things", JWT(testTokens), gate, func(c *gin.Context) {
		*hits++
		c.Status(http.StatusCreated)
	})
	return r
}

func doRequest(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/things", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		token  string
		status int
	}{
		{token: "admin", status: http.StatusCreated},
		{token: "superuser", status: http.StatusCreated},
		{token: "staff", status: http.StatusForbidden},
		{token: "nobody", status: http.StatusForbidden},
		{token: "", status: http.StatusUnauthorized},
		{token: "forged", status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		hits := 0
		w := doRequest(newGatedRouter(RequireAdmin(), &hits), tc.token)
		assert.Equal(t, tc.status, w.Code, tc.token)
		if tc.status == http.StatusCreated {
			assert.Equal(t, 1, hits, tc.token)
		} else {
			assert.Zero(t, hits, "handler must not run for %q", tc.token)
		}
	}
}

func TestRequireStaffOrAdmin(t *testing.T) {
	cases := map[string]int{
		"admin":     http.StatusCreated,
		"staff":     http.StatusCreated,
		"superuser": http.StatusCreated,
		"nobody":    http.StatusForbidden,
	}
	for token, status := range cases {
		hits := 0
		w := doRequest(newGatedRouter(RequireStaffOrAdmin(), &hits), token)
		assert.Equal(t, status, w.Code, token)
	}
}

func TestRequireAdminWithoutJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, body.Error.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", JWT(testTokens), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Token admin")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
