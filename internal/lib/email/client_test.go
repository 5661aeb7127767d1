package email

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deppfellow/todo-api/internal/config"
	"github.com/rs/zerolog"
)

// chdirRoot moves into the module root so templates/emails resolves.
func chdirRoot(t *testing.T) {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if err := os.Chdir(filepath.Join(wd, "..", "..", "..")); err != nil {
		t.Fatal(err)
	}
}

func TestRenderTodoCompleted(t *testing.T) {
	chdirRoot(t)

	html, err := Render(TemplateTodoCompleted, PreviewData[TemplateTodoCompleted])
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "John") || !strings.Contains(html, "Buy milk") {
		t.Errorf("rendered body is missing preview data:\n%s", html)
	}
}

func TestRenderEscapesTitle(t *testing.T) {
	chdirRoot(t)

	html, err := Render(TemplateTodoCompleted, map[string]string{
		"UserFirstName": "Ann",
		"TodoTitle":     "<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Error("todo title was not HTML escaped")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	chdirRoot(t)

	if _, err := Render(Template("missing"), nil); err == nil {
		t.Fatal("expected an error for a missing template")
	}
}

func TestNewClientDefaultFrom(t *testing.T) {
	nop := zerolog.Nop()

	c := NewClient(&config.Config{}, &nop)
	if c.from != DefaultFrom {
		t.Errorf("from = %q, want %q", c.from, DefaultFrom)
	}

	cfg := &config.Config{Integration: config.IntegrationConfig{EmailFrom: "Ops <ops@example.com>"}}
	if c := NewClient(cfg, &nop); c.from != "Ops <ops@example.com>" {
		t.Errorf("from = %q", c.from)
	}
}
