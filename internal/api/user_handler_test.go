package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
)

func TestUserHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		registerFn func(context.Context, service.UserInput) (*domain.User, error)
		wantStatus int
		wantFields map[string]any
	}{
		{
			name:       "created",
			body:       `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"secret"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing fields",
			body:       `{"first_name":"Ada","email":"not-an-email","password":"pw"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantFields: map[string]any{
				"last_name": "is required",
				"email":     "has invalid format",
				"password":  "is too short",
			},
		},
		{
			name: "email taken",
			body: `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"secret"}`,
			registerFn: func(context.Context, service.UserInput) (*domain.User, error) {
				return nil, store.ErrEmailExists
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "malformed body",
			body:       `[1,2`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUserHandler(&mocks.MockUserService{RegisterFn: tt.registerFn}, testLogger())

			w := httptest.NewRecorder()
			h.Register(w, jsonRequest(http.MethodPost, "/api/users", tt.body))

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantFields != nil {
				body := decodeBody(t, w)
				assert.Equal(t, tt.wantFields, body["fields"])
				input := body["input"].(map[string]any)
				assert.NotContains(t, input, "password")
				assert.Equal(t, "Ada", input["first_name"])
			}
		})
	}
}

func TestUserHandler_RegisterHidesPassword(t *testing.T) {
	h := NewUserHandler(&mocks.MockUserService{
		RegisterFn: func(_ context.Context, in service.UserInput) (*domain.User, error) {
			return &domain.User{ID: 3, Email: in.Email, Password: in.Password, PasswordDigest: "digest"}, nil
		},
	}, testLogger())

	w := httptest.NewRecorder()
	h.Register(w, jsonRequest(http.MethodPost, "/api/users",
		`{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","password":"secret"}`))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "digest")
}

func TestUserHandler_Update(t *testing.T) {
	var gotActor, gotID int64
	var gotPatch service.UserPatch
	users := &mocks.MockUserService{
		UpdateFn: func(_ context.Context, actorID, id int64, patch service.UserPatch) (*domain.User, error) {
			gotActor, gotID, gotPatch = actorID, id, patch
			if actorID != id {
				return nil, service.ErrNotOwned
			}
			return &domain.User{ID: id, FirstName: *patch.FirstName}, nil
		},
	}
	h := NewUserHandler(users, testLogger())

	t.Run("own account", func(t *testing.T) {
		r := withURLParam(withActor(jsonRequest(http.MethodPatch, "/api/users/2", `{"first_name":"Grace"}`), 2), "id", "2")
		w := httptest.NewRecorder()
		h.Update(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(2), gotActor)
		assert.Equal(t, int64(2), gotID)
		assert.Nil(t, gotPatch.Password)
		assert.Nil(t, gotPatch.Email)
		assert.Equal(t, "Grace", decodeBody(t, w)["first_name"])
	})

	t.Run("someone else", func(t *testing.T) {
		r := withURLParam(withActor(jsonRequest(http.MethodPatch, "/api/users/2", `{"first_name":"Grace"}`), 7), "id", "2")
		w := httptest.NewRecorder()
		h.Update(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		r := withURLParam(withActor(jsonRequest(http.MethodPatch, "/api/users/2", `{"email":"nope"}`), 2), "id", "2")
		w := httptest.NewRecorder()
		h.Update(w, r)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, map[string]any{"email": "has invalid format"}, decodeBody(t, w)["fields"])
	})

	t.Run("anonymous", func(t *testing.T) {
		r := withURLParam(jsonRequest(http.MethodPatch, "/api/users/2", `{"first_name":"Grace"}`), "id", "2")
		w := httptest.NewRecorder()
		h.Update(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUserHandler_Delete(t *testing.T) {
	users := &mocks.MockUserService{
		DeleteFn: func(_ context.Context, actorID, id int64) error {
			switch {
			case actorID != id:
				return service.ErrNotOwned
			case id == 5:
				return store.ErrInUse
			default:
				return nil
			}
		},
	}
	h := NewUserHandler(users, testLogger())

	tests := []struct {
		name   string
		actor  int64
		id     string
		status int
	}{
		{"own account", 2, "2", http.StatusNoContent},
		{"creator of tasks", 5, "5", http.StatusConflict},
		{"someone else", 2, "3", http.StatusForbidden},
		{"bad id", 2, "x", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := withURLParam(withActor(httptest.NewRequest(http.MethodDelete, "/api/users/"+tt.id, nil), tt.actor), "id", tt.id)
			w := httptest.NewRecorder()
			h.Delete(w, r)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestUserHandler_ListAndGet(t *testing.T) {
	users := &mocks.MockUserService{
		ListFn: func(context.Context) ([]domain.User, error) {
			return []domain.User{{ID: 1}, {ID: 2}}, nil
		},
		GetFn: func(_ context.Context, id int64) (*domain.User, error) {
			if id == 9 {
				return nil, store.ErrUserNotFound
			}
			return &domain.User{ID: id}, nil
		},
	}
	h := NewUserHandler(users, testLogger())

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[1,2]`, idsOf(t, w))

	w = httptest.NewRecorder()
	h.Get(w, withURLParam(httptest.NewRequest(http.MethodGet, "/api/users/9", nil), "id", "9"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeBody(t, w)["error"])
}
