package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/blogql/blogql/internal/config"
	"github.com/blogql/blogql/internal/entity"
	"github.com/blogql/blogql/internal/store"
)

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func setupTestServer(t *testing.T, modify func(*config.Config)) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "test.db")
	if modify != nil {
		modify(cfg)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := st.Seed(ctx); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	return New(cfg, st, zaptest.NewLogger(t)), st
}

func post(t *testing.T, h http.Handler, path, body string) (int, response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, resp
}

const tooDeep = `{ users { posts { author { profile { memberType { profiles { id } } } } } } }`

func TestGraphQLEndpoint(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	for _, path := range []string{"/graphql", "/"} {
		t.Run("query on "+path, func(t *testing.T) {
			code, resp := post(t, h, path, `{"query":"{ memberTypes { id postsLimitPerMonth } }"}`)
			if code != http.StatusOK {
				t.Fatalf("status = %d, want 200", code)
			}
			want := `{"memberTypes":[{"id":"basic","postsLimitPerMonth":20},{"id":"business","postsLimitPerMonth":100}]}`
			if string(resp.Data) != want {
				t.Errorf("data = %s, want %s", resp.Data, want)
			}
		})
	}

	t.Run("mutation with variables", func(t *testing.T) {
		body := `{
			"query": "mutation Create($dto: CreateUserInput!) { createUser(dto: $dto) { name balance } }",
			"operationName": "Create",
			"variables": {"dto": {"name": "Alice", "balance": 12.5}}
		}`
		code, resp := post(t, h, "/graphql", body)
		if code != http.StatusOK {
			t.Fatalf("status = %d, want 200", code)
		}
		if len(resp.Errors) > 0 {
			t.Fatalf("unexpected errors: %+v", resp.Errors)
		}
		if string(resp.Data) != `{"createUser":{"name":"Alice","balance":12.5}}` {
			t.Errorf("data = %s", resp.Data)
		}
	})

	t.Run("invalid argument", func(t *testing.T) {
		code, resp := post(t, h, "/graphql", `{"query":"mutation { createUser(dto: {name: \" \", balance: 1}) { id } }"}`)
		if code != http.StatusOK {
			t.Fatalf("status = %d, want 200", code)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].Message != "User name should not be empty" {
			t.Errorf("errors = %+v", resp.Errors)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		code, resp := post(t, h, "/graphql", `{"query":`)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
		if len(resp.Errors) != 1 {
			t.Errorf("errors = %+v, want 1", resp.Errors)
		}
	})
}

func TestGraphQLNumericVariables(t *testing.T) {
	h, st := setupTestServer(t, nil)
	ctx := context.Background()

	alice := &entity.User{ID: uuid.NewString(), Name: "Alice", Balance: 10}
	if err := st.Users.Create(ctx, alice); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	createProfile := func(year string) (int, response) {
		body := `{
			"query": "mutation($dto: CreateProfileInput!) { createProfile(dto: $dto) { yearOfBirth } }",
			"variables": {"dto": {"userId": "` + alice.ID + `", "isMale": true, "yearOfBirth": ` + year + `, "memberTypeId": "basic"}}
		}`
		return post(t, h, "/graphql", body)
	}

	t.Run("fractional year of birth", func(t *testing.T) {
		code, resp := createProfile("1990.5")
		if code != http.StatusOK {
			t.Fatalf("status = %d, want 200", code)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].Message != "Int cannot represent non-integer value: 1990.5" {
			t.Errorf("errors = %+v", resp.Errors)
		}
		profiles, err := st.Profiles.FindMany(ctx, nil)
		if err != nil {
			t.Fatalf("FindMany() error = %v", err)
		}
		if len(profiles) != 0 {
			t.Errorf("profiles count = %d, want 0", len(profiles))
		}
	})

	t.Run("integral year of birth", func(t *testing.T) {
		code, resp := createProfile("1990")
		if code != http.StatusOK {
			t.Fatalf("status = %d, want 200", code)
		}
		if len(resp.Errors) > 0 {
			t.Fatalf("unexpected errors: %+v", resp.Errors)
		}
		if string(resp.Data) != `{"createProfile":{"yearOfBirth":1990}}` {
			t.Errorf("data = %s", resp.Data)
		}
	})
}

func TestNormalizeVariables(t *testing.T) {
	vars := map[string]any{
		"int":   json.Number("42"),
		"frac":  json.Number("1990.5"),
		"name":  "Alice",
		"dto":   map[string]any{"year": json.Number("1990")},
		"list":  []any{json.Number("1"), json.Number("2.5")},
		"empty": nil,
	}
	got := NormalizeVariables(vars)

	if v, ok := got["int"].(int64); !ok || v != 42 {
		t.Errorf("int = %#v, want int64(42)", got["int"])
	}
	if v, ok := got["frac"].(float64); !ok || v != 1990.5 {
		t.Errorf("frac = %#v, want float64(1990.5)", got["frac"])
	}
	if got["name"] != "Alice" {
		t.Errorf("name = %#v, want Alice", got["name"])
	}
	if v, ok := got["dto"].(map[string]any)["year"].(int64); !ok || v != 1990 {
		t.Errorf("dto.year = %#v, want int64(1990)", got["dto"])
	}
	list := got["list"].([]any)
	if _, ok := list[0].(int64); !ok {
		t.Errorf("list[0] = %#v, want int64", list[0])
	}
	if _, ok := list[1].(float64); !ok {
		t.Errorf("list[1] = %#v, want float64", list[1])
	}
	if got["empty"] != nil {
		t.Errorf("empty = %#v, want nil", got["empty"])
	}
	if NormalizeVariables(nil) != nil {
		t.Error("NormalizeVariables(nil) should stay nil")
	}
}

func TestGraphQLPrevalidation(t *testing.T) {
	h, _ := setupTestServer(t, nil)

	t.Run("too deep", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"query": tooDeep})
		code, resp := post(t, h, "/graphql", string(body))
		if code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", code)
		}
		if string(resp.Data) != "null" {
			t.Errorf("data = %s, want null", resp.Data)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].Message != "Anonymous query exceeds maximum operation depth of 5" {
			t.Errorf("errors = %+v", resp.Errors)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		code, resp := post(t, h, "/graphql", `{"query":"{ nope }"}`)
		if code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", code)
		}
		if len(resp.Errors) == 0 {
			t.Error("expected validation errors")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		code, _ := post(t, h, "/graphql", `{"query":"{ users { "}`)
		if code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", code)
		}
	})
}

func TestGraphQLWithoutPrevalidation(t *testing.T) {
	h, _ := setupTestServer(t, func(cfg *config.Config) {
		cfg.GraphQL.Validate = false
	})

	body, _ := json.Marshal(map[string]string{"query": tooDeep})
	code, resp := post(t, h, "/graphql", string(body))
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", code)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Message != "Anonymous query exceeds maximum operation depth of 5" {
		t.Errorf("errors = %+v", resp.Errors)
	}
}

func TestIntrospectionToggle(t *testing.T) {
	const query = `{"query":"{ __schema { queryType { name } } }"}`

	h, _ := setupTestServer(t, nil)
	if _, resp := post(t, h, "/graphql", query); len(resp.Errors) > 0 {
		t.Errorf("introspection enabled: unexpected errors %+v", resp.Errors)
	}

	h, _ = setupTestServer(t, func(cfg *config.Config) {
		cfg.GraphQL.Introspection = false
	})
	_, resp := post(t, h, "/graphql", query)
	if len(resp.Errors) != 1 || resp.Errors[0].Message != "introspection disabled" {
		t.Errorf("introspection disabled: errors = %+v", resp.Errors)
	}
}

func TestAuxiliaryRoutes(t *testing.T) {
	h, st := setupTestServer(t, nil)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("playground", func(t *testing.T) {
		rec := get("/graphql")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "<html") {
			t.Error("playground did not return HTML")
		}
	})

	t.Run("metrics", func(t *testing.T) {
		post(t, h, "/graphql", `{"query":"{ users { id } }"}`)
		rec := get("/metrics")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `blogql_graphql_operations_total{operation="query",status="ok"}`) {
			t.Error("metrics output missing query counter")
		}
	})

	t.Run("healthz", func(t *testing.T) {
		if rec := get("/healthz"); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		st.Close()
		if rec := get("/healthz"); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status after close = %d, want 503", rec.Code)
		}
	})
}
