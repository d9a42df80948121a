package api_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgoodall/taskly-api/internal/api"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/mocks"
)

const resetBaseURL = "http://localhost:3000"

type authHandlerDeps struct {
	userStore   *mocks.MockUserStore
	jwtService  *mocks.MockJWTService
	hasher      *mocks.MockPasswordHasher
	verifier    *mocks.MockPasswordVerifier
	resetTokens *mocks.MockResetTokenGenerator
	mailer      *mocks.MockMailer
}

func newAuthHandler(deps authHandlerDeps) *api.AuthHandler {
	if deps.userStore == nil {
		deps.userStore = mocks.NewMockUserStore()
	}
	if deps.jwtService == nil {
		deps.jwtService = &mocks.MockJWTService{Token: "access-token", RefreshToken: "refresh-token"}
	}
	if deps.hasher == nil {
		deps.hasher = &mocks.MockPasswordHasher{}
	}
	if deps.verifier == nil {
		deps.verifier = &mocks.MockPasswordVerifier{ShouldSucceed: true}
	}
	if deps.resetTokens == nil {
		deps.resetTokens = &mocks.MockResetTokenGenerator{}
	}
	if deps.mailer == nil {
		deps.mailer = &mocks.MockMailer{}
	}
	return api.NewAuthHandler(
		deps.userStore,
		deps.jwtService,
		deps.hasher,
		deps.verifier,
		deps.resetTokens,
		deps.mailer,
		resetBaseURL,
	)
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seedUser(t *testing.T, userStore *mocks.MockUserStore, username, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, email, "ignored")
	require.NoError(t, err)
	user.HashedPassword = "hashed:ignored"
	user.Password = ""
	require.NoError(t, userStore.Create(context.Background(), user))
	return user
}

func TestSignup(t *testing.T) {
	t.Parallel()

	validPayload := map[string]string{
		"username":        "frodo",
		"email":           "frodo@shire.example",
		"password":        "longbottomleaf",
		"confirmpassword": "longbottomleaf",
	}

	t.Run("success returns token pair", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		handler := newAuthHandler(authHandlerDeps{userStore: userStore})

		w := httptest.NewRecorder()
		handler.Signup(w, jsonRequest(t, http.MethodPost, "/signup/", validPayload))

		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Registered Successfully", body["message"])
		tokens, ok := body["tokens"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "access-token", tokens["access"])
		assert.Equal(t, "refresh-token", tokens["refresh"])

		created, ok := userStore.Users["frodo"]
		require.True(t, ok)
		assert.Equal(t, "hashed:longbottomleaf", created.HashedPassword)
		assert.Empty(t, created.Password)
	})

	t.Run("blank fields", func(t *testing.T) {
		t.Parallel()
		for _, field := range []string{"username", "email", "password", "confirmpassword"} {
			payload := map[string]string{}
			for k, v := range validPayload {
				payload[k] = v
			}
			payload[field] = "   "

			w := httptest.NewRecorder()
			newAuthHandler(authHandlerDeps{}).Signup(w, jsonRequest(t, http.MethodPost, "/signup/", payload))

			assert.Equal(t, http.StatusBadRequest, w.Code, field)
			assert.Equal(t, "All fields are required", decodeBody(t, w)["error"], field)
		}
	})

	t.Run("password mismatch", func(t *testing.T) {
		t.Parallel()
		payload := map[string]string{}
		for k, v := range validPayload {
			payload[k] = v
		}
		payload["confirmpassword"] = "different"

		w := httptest.NewRecorder()
		newAuthHandler(authHandlerDeps{}).Signup(w, jsonRequest(t, http.MethodPost, "/signup/", payload))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Passwords do not match", decodeBody(t, w)["error"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		seedUser(t, userStore, "frodo", "other@shire.example")
		handler := newAuthHandler(authHandlerDeps{userStore: userStore})

		w := httptest.NewRecorder()
		handler.Signup(w, jsonRequest(t, http.MethodPost, "/signup/", validPayload))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Username is already taken", decodeBody(t, w)["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/signup/", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		newAuthHandler(authHandlerDeps{}).Signup(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request format", decodeBody(t, w)["error"])
	})

	t.Run("token generation failure", func(t *testing.T) {
		t.Parallel()
		handler := newAuthHandler(authHandlerDeps{
			jwtService: &mocks.MockJWTService{Err: errors.New("signing failed")},
		})

		w := httptest.NewRecorder()
		handler.Signup(w, jsonRequest(t, http.MethodPost, "/signup/", validPayload))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "signing failed")
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		seedUser(t, userStore, "sam", "sam@shire.example")
		handler := newAuthHandler(authHandlerDeps{userStore: userStore})

		w := httptest.NewRecorder()
		handler.Login(w, jsonRequest(t, http.MethodPost, "/login/", map[string]string{
			"username": "sam",
			"password": "po-ta-toes",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "access-token", body["access"])
		assert.Equal(t, "sam", body["username"])
		assert.Equal(t, "Login successful", body["message"])
	})

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()
		handler := newAuthHandler(authHandlerDeps{})

		w := httptest.NewRecorder()
		handler.Login(w, jsonRequest(t, http.MethodPost, "/login/", map[string]string{
			"username": "nobody",
			"password": "whatever",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, w)["error"])
	})

	t.Run("wrong password uses the same message", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		seedUser(t, userStore, "sam", "sam@shire.example")
		handler := newAuthHandler(authHandlerDeps{
			userStore: userStore,
			verifier:  &mocks.MockPasswordVerifier{ShouldSucceed: false},
		})

		w := httptest.NewRecorder()
		handler.Login(w, jsonRequest(t, http.MethodPost, "/login/", map[string]string{
			"username": "sam",
			"password": "wrong",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid credentials", decodeBody(t, w)["error"])
	})
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	t.Run("sends reset link", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		user := seedUser(t, userStore, "merry", "merry@shire.example")
		mailSender := &mocks.MockMailer{}
		handler := newAuthHandler(authHandlerDeps{
			userStore:   userStore,
			resetTokens: &mocks.MockResetTokenGenerator{Token: "tok-123"},
			mailer:      mailSender,
		})

		w := httptest.NewRecorder()
		handler.PasswordReset(w, jsonRequest(t, http.MethodPost, "/password-reset/", map[string]string{
			"email": "merry@shire.example",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Mail sent", decodeBody(t, w)["message"])

		require.Len(t, mailSender.Sent, 1)
		sent := mailSender.Sent[0]
		assert.Equal(t, "merry@shire.example", sent.To)
		assert.Equal(t, "Password Reset Request", sent.Subject)

		uid := base64.RawURLEncoding.EncodeToString([]byte(user.ID.String()))
		assert.Contains(t, sent.Body, resetBaseURL+"/reset-password/"+uid+"/tok-123/")
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		newAuthHandler(authHandlerDeps{}).PasswordReset(w, jsonRequest(t, http.MethodPost, "/password-reset/", map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Required field", decodeBody(t, w)["error"])
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		newAuthHandler(authHandlerDeps{}).PasswordReset(w, jsonRequest(t, http.MethodPost, "/password-reset/", map[string]string{
			"email": "nobody@shire.example",
		}))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No user Found", decodeBody(t, w)["error"])
	})

	t.Run("mail delivery failure", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		seedUser(t, userStore, "pippin", "pippin@shire.example")
		handler := newAuthHandler(authHandlerDeps{
			userStore: userStore,
			mailer:    &mocks.MockMailer{SendError: errors.New("smtp: connection refused")},
		})

		w := httptest.NewRecorder()
		handler.PasswordReset(w, jsonRequest(t, http.MethodPost, "/password-reset/", map[string]string{
			"email": "pippin@shire.example",
		}))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestPasswordResetConfirm(t *testing.T) {
	t.Parallel()

	encodeUID := func(id uuid.UUID) string {
		return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
	}

	confirmRequest := func(t *testing.T, uid, token string, payload interface{}) *http.Request {
		r := jsonRequest(t, http.MethodPost, "/password-reset-confirm/"+uid+"/"+token+"/", payload)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("uid", uid)
		rctx.URLParams.Add("token", token)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("success updates the stored hash", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		user := seedUser(t, userStore, "bilbo", "bilbo@shire.example")
		handler := newAuthHandler(authHandlerDeps{userStore: userStore})

		w := httptest.NewRecorder()
		handler.PasswordResetConfirm(w, confirmRequest(t, encodeUID(user.ID), "tok-123", map[string]string{
			"password": "newpassword",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Password reset success!", decodeBody(t, w)["message"])
		assert.Equal(t, "hashed:newpassword", userStore.Users["bilbo"].HashedPassword)
	})

	t.Run("invalid uid encoding", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		newAuthHandler(authHandlerDeps{}).PasswordResetConfirm(w, confirmRequest(t, "!!not-base64!!", "tok", map[string]string{
			"password": "newpassword",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid user", decodeBody(t, w)["error"])
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		newAuthHandler(authHandlerDeps{}).PasswordResetConfirm(w, confirmRequest(t, encodeUID(uuid.New()), "tok", map[string]string{
			"password": "newpassword",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid user", decodeBody(t, w)["error"])
	})

	t.Run("invalid token", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		user := seedUser(t, userStore, "bilbo", "bilbo@shire.example")
		handler := newAuthHandler(authHandlerDeps{
			userStore:   userStore,
			resetTokens: &mocks.MockResetTokenGenerator{CheckError: errors.New("bad token")},
		})

		w := httptest.NewRecorder()
		handler.PasswordResetConfirm(w, confirmRequest(t, encodeUID(user.ID), "stale", map[string]string{
			"password": "newpassword",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid or expired token", decodeBody(t, w)["error"])
	})

	t.Run("missing password", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		user := seedUser(t, userStore, "bilbo", "bilbo@shire.example")
		handler := newAuthHandler(authHandlerDeps{userStore: userStore})

		w := httptest.NewRecorder()
		handler.PasswordResetConfirm(w, confirmRequest(t, encodeUID(user.ID), "tok", map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Password is required", decodeBody(t, w)["error"])
	})

	t.Run("store error stays generic", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		user := seedUser(t, userStore, "bilbo", "bilbo@shire.example")
		userStore.UpdatePasswordFn = func(ctx context.Context, id uuid.UUID, hashedPassword string) error {
			return errors.New("pq: deadlock detected")
		}
		handler := newAuthHandler(authHandlerDeps{userStore: userStore})

		w := httptest.NewRecorder()
		handler.PasswordResetConfirm(w, confirmRequest(t, encodeUID(user.ID), "tok", map[string]string{
			"password": "newpassword",
		}))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "deadlock")
	})
}

func TestHome(t *testing.T) {
	t.Parallel()

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/home/", nil)
		r = r.WithContext(withUserID(r.Context(), uuid.New()))
		w := httptest.NewRecorder()

		newAuthHandler(authHandlerDeps{}).Home(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Welcome to dashboard", decodeBody(t, w)["message"])
	})

	t.Run("missing user ID", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/home/", nil)
		w := httptest.NewRecorder()

		newAuthHandler(authHandlerDeps{}).Home(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
