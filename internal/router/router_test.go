package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/todo-api/internal/config"
	"github.com/deppfellow/todo-api/internal/errs"
	"github.com/deppfellow/todo-api/internal/handler"
	"github.com/deppfellow/todo-api/internal/middleware"
	"github.com/deppfellow/todo-api/internal/model"
	"github.com/deppfellow/todo-api/internal/repository/repositorytest"
	"github.com/deppfellow/todo-api/internal/server"
	"github.com/deppfellow/todo-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// bearerAuth stands in for Clerk: the bearer token is the user id.
func bearerAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !ok || token == "" {
			return errs.NewUnauthorizedError("Unauthorized", false)
		}
		middleware.SetUserID(c, token)
		return next(c)
	}
}

type testAPI struct {
	echo *echo.Echo
	repo *repositorytest.MemoryTodoRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	nop := zerolog.Nop()
	srv := &server.Server{
		Config: &config.Config{Server: config.ServerConfig{Port: "8080"}},
		Logger: &nop,
	}

	repo := repositorytest.NewMemoryTodoRepository()
	h := &handler.Handlers{
		Todo: handler.NewTodoHandler(srv, service.NewTodoService(srv, repo, nil)),
	}

	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(srv).GlobalErrorHandler
	e.Use(middleware.RequestID(), middleware.NewContextEnhancer(srv).EnhanceContext())
	registerTodoRoutes(e.Group("/api/v1"), h, bearerAuth)

	return &testAPI{echo: e, repo: repo}
}

func (a *testAPI) do(method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+user)
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) create(t *testing.T, user, title string) model.Todo {
	t.Helper()

	rec := a.do(http.MethodPost, "/api/v1/todos", user, `{"title":"`+title+`","description":"","done":false}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[model.Todo](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestCreateTodo(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/todos", "alice", `{"title":"Buy milk","description":"2 liters","done":false}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	todo := decode[model.Todo](t, rec)
	if todo.Title != "Buy milk" || todo.Description != "2 liters" || todo.Done || todo.UserID != "alice" {
		t.Errorf("unexpected todo %+v", todo)
	}
	if todo.ID.String() == "" || todo.CreatedAt.IsZero() {
		t.Errorf("store fields missing: %+v", todo)
	}
}

func TestCreateTodoValidation(t *testing.T) {
	tests := map[string]struct {
		body   string
		fields []string
	}{
		"empty title":      {`{"title":"","description":"","done":false}`, []string{"title"}},
		"missing field":    {`{"title":"x","done":false}`, []string{"description"}},
		"extra field":      {`{"title":"x","description":"","done":false,"user_id":"bob"}`, []string{"user_id"}},
		"wrong type":       {`{"title":"x","description":"","done":"yes"}`, []string{"done"}},
		"all at once":      {`{"title":"","priority":1}`, []string{"priority", "title", "description", "done"}},
		"case sensitive":   {`{"Title":"x","description":"","done":false}`, []string{"Title"}},
		"explicit null":    {`{"title":"x","description":null,"done":false}`, []string{"description"}},
		"type and empty":   {`{"title":"","description":5,"done":false}`, []string{"title", "description"}},
		"type and missing": {`{"description":"","done":"yes"}`, []string{"title", "done"}},
		"two wrong types":  {`{"title":1,"description":"","done":"yes","extra":null}`, []string{"extra", "title", "done"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			api := newTestAPI(t)

			rec := api.do(http.MethodPost, "/api/v1/todos", "alice", tt.body)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status %d, want 401; body %s", rec.Code, rec.Body.String())
			}

			body := decode[errs.HTTPError](t, rec)
			if body.Code != "BAD_REQUEST" || body.Message != "Validation failed" {
				t.Errorf("unexpected envelope %+v", body)
			}

			got := map[string]bool{}
			for _, fe := range body.Errors {
				got[fe.Field] = true
			}
			if len(body.Errors) != len(tt.fields) {
				t.Errorf("errors %+v, want exactly %v", body.Errors, tt.fields)
			}
			for _, field := range tt.fields {
				if !got[field] {
					t.Errorf("missing error for %q in %+v", field, body.Errors)
				}
			}

			if api.repo.Len() != 0 {
				t.Error("nothing should be stored on validation failure")
			}
		})
	}
}

func TestCreateTodoRejectsNonObjectBody(t *testing.T) {
	for _, body := range []string{`[]`, `"todo"`, `42`, `{"title":`} {
		api := newTestAPI(t)

		rec := api.do(http.MethodPost, "/api/v1/todos", "alice", body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status %d, want 401", body, rec.Code)
		}

		got := decode[errs.HTTPError](t, rec)
		if got.Message != "Invalid request body" {
			t.Errorf("%s: message %q, want Invalid request body", body, got.Message)
		}
		if strings.Contains(rec.Body.String(), "model.") || strings.Contains(rec.Body.String(), "offset") {
			t.Errorf("%s: decoder details leaked: %s", body, rec.Body.String())
		}
		if api.repo.Len() != 0 {
			t.Errorf("%s: nothing should be stored", body)
		}
	}
}

func TestRequiresAuthentication(t *testing.T) {
	api := newTestAPI(t)

	for _, req := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/v1/todos", `{"title":"x","description":"","done":false}`},
		{http.MethodGet, "/api/v1/todos", ""},
		{http.MethodPatch, "/api/v1/todos/6f1c2f1e-8d7a-4f7e-9a52-1c1f0c3b9a11/done", ""},
	} {
		rec := api.do(req.method, req.path, "", req.body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status %d, want 401", req.method, req.path, rec.Code)
		}
	}

	if api.repo.Len() != 0 {
		t.Error("unauthenticated create must not store anything")
	}
}

func TestListTodosIsolatesOwners(t *testing.T) {
	api := newTestAPI(t)

	a1 := api.create(t, "alice", "a1")
	api.create(t, "bob", "b1")
	a2 := api.create(t, "alice", "a2")

	rec := api.do(http.MethodGet, "/api/v1/todos", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	todos := decode[[]model.Todo](t, rec)
	if len(todos) != 2 || todos[0].ID != a1.ID || todos[1].ID != a2.ID {
		t.Errorf("alice should see a1, a2 in order, got %+v", todos)
	}
}

func TestListTodosEmpty(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/todos", "carol", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestMarkTodoDone(t *testing.T) {
	api := newTestAPI(t)
	todo := api.create(t, "alice", "Buy milk")
	path := "/api/v1/todos/" + todo.ID.String() + "/done"

	rec := api.do(http.MethodPatch, path, "bob", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign mark done: status %d, want 404", rec.Code)
	}
	if body := decode[errs.HTTPError](t, rec); body.Code != "TODO_NOT_FOUND" || body.Message != "Todo not found" {
		t.Errorf("unexpected envelope %+v", body)
	}

	for i := 0; i < 2; i++ {
		rec = api.do(http.MethodPatch, path, "alice", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("mark done #%d: status %d, body %s", i+1, rec.Code, rec.Body.String())
		}
		if got := decode[model.Todo](t, rec); !got.Done || got.ID != todo.ID {
			t.Errorf("mark done #%d: unexpected todo %+v", i+1, got)
		}
	}
}

func TestMarkTodoDoneNotFoundIsUniform(t *testing.T) {
	api := newTestAPI(t)

	var bodies []string
	for _, id := range []string{"6f1c2f1e-8d7a-4f7e-9a52-1c1f0c3b9a11", "not-a-uuid"} {
		rec := api.do(http.MethodPatch, "/api/v1/todos/"+id+"/done", "alice", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status %d, want 404", id, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}

	if bodies[0] != bodies[1] {
		t.Errorf("malformed and unknown ids should answer identically:\n%s\n%s", bodies[0], bodies[1])
	}
}

func TestScenarioCreateDoneList(t *testing.T) {
	api := newTestAPI(t)

	todo := api.create(t, "alice", "Write report")
	if rec := api.do(http.MethodPatch, "/api/v1/todos/"+todo.ID.String()+"/done", "alice", ""); rec.Code != http.StatusOK {
		t.Fatalf("mark done: status %d", rec.Code)
	}

	todos := decode[[]model.Todo](t, api.do(http.MethodGet, "/api/v1/todos", "alice", ""))
	if len(todos) != 1 || !todos[0].Done || todos[0].Title != "Write report" {
		t.Errorf("unexpected list %+v", todos)
	}
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/nope", "alice", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	if body := decode[errs.HTTPError](t, rec); body.Message != "Route not found" {
		t.Errorf("message = %q", body.Message)
	}
}
