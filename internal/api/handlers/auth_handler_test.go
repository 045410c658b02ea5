package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupThenLogin(t *testing.T) {
	db := newMemDB()
	h := NewAuthHandler(db, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/signup",
		strings.NewReader(`{"first_name":"Asha","email":"asha@example.com","password":"hunter22"}`))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var signup map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &signup))
	assert.NotEmpty(t, signup["token"])

	// Stored hash is not the plaintext password.
	stored := db.users["asha@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.Equal(t, "Asha", stored.FirstName)

	req = httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"asha@example.com","password":"hunter22"}`))
	rr = httptest.NewRecorder()
	h.Login(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.NotEmpty(t, login["token"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newMemDB()
	h := NewAuthHandler(db, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/signup",
		strings.NewReader(`{"email":"asha@example.com","password":"hunter22"}`))
	h.Signup(httptest.NewRecorder(), req)

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"asha@example.com","password":"wrong"}`},
		{"unknown user", `{"email":"nobody@example.com","password":"hunter22"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.Login(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestSignupValidatesPayload(t *testing.T) {
	h := NewAuthHandler(newMemDB(), testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/signup",
		strings.NewReader(`{"email":"","password":""}`))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
