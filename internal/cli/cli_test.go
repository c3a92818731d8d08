package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/entrypoint"
	http_controllers "github.com/bookbrief/bookbrief/internal/http"
)

const catalogue = `
categories:
  - id: productivity
    name: Productivity
books:
  - id: deep-work
    title: Deep Work
    author: Cal Newport
    category: Productivity
    about: Focus is rare.
    free: true
    published: true
    chapters:
      - title: The Idea
        text: <p>Depth is valuable.</p>
      - title: The Rules
        text: <p>Work deeply.</p>
`

func init() {
	gin.SetMode(gin.TestMode)
}

// execute runs the command line with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand("test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

type cliFixture struct {
	dbPath string
	server *httptest.Server
	app    *entrypoint.App
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "cli-test-secret")
	t.Setenv("AUTH_BCRYPT_COST", "4")

	f := &cliFixture{dbPath: filepath.Join(t.TempDir(), "bookbrief.db")}

	catalogueFile := filepath.Join(t.TempDir(), "catalogue.yaml")
	require.NoError(t, os.WriteFile(catalogueFile, []byte(catalogue), 0o600))

	out, err := execute(t, "import-books", catalogueFile, "--db", f.dbPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Books: 1 created, 0 skipped (2 chapters)")

	out, err = execute(t, "create-admin", "--db", f.dbPath, "--email", "admin@example.com", "--password", "secret123")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created administrator admin@example.com")

	cfg := config.NewConfig()
	cfg.Database.Path = f.dbPath
	f.app, err = entrypoint.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(f.app.Close)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:     f.app.DB.DB,
		Books:        f.app.Books,
		Categories:   f.app.Categories,
		ReadingLists: f.app.ReadingLists,
		Reviews:      f.app.Reviews,
		Users:        f.app.Users,
		Audit:        f.app.Audit,
		AuthService:  f.app.Auth,
		AuthConfig:   cfg.Auth,
		Search:       config.Search{RatePerSecond: 100, Burst: 100},
		Version:      "test",
	})
	t.Cleanup(router.Stop)

	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *cliFixture) remote(args ...string) []string {
	return append(args, "--server", f.server.URL, "--email", "admin@example.com", "--password", "secret123")
}

func TestImportBooks_Repeatable(t *testing.T) {
	f := newCLIFixture(t)

	catalogueFile := filepath.Join(t.TempDir(), "again.yaml")
	require.NoError(t, os.WriteFile(catalogueFile, []byte(catalogue), 0o600))

	out, err := execute(t, "import-books", catalogueFile, "--db", f.dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Categories: 0 created, 1 skipped")
	assert.Contains(t, out, "Books: 0 created, 1 skipped")
}

func TestImportBooks_DryRun(t *testing.T) {
	catalogueFile := filepath.Join(t.TempDir(), "catalogue.yaml")
	require.NoError(t, os.WriteFile(catalogueFile, []byte(catalogue), 0o600))
	dbPath := filepath.Join(t.TempDir(), "untouched.db")

	out, err := execute(t, "import-books", catalogueFile, "--dry-run", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Catalogue is valid: 1 categories, 1 books")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateAdmin_Duplicate(t *testing.T) {
	t.Setenv("AUTH_BCRYPT_COST", "4")
	dbPath := filepath.Join(t.TempDir(), "bookbrief.db")

	_, err := execute(t, "create-admin", "--db", dbPath, "--email", "root@example.com", "--password", "secret123")
	require.NoError(t, err)

	_, err = execute(t, "create-admin", "--db", dbPath, "--email", "root@example.com", "--password", "secret123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateAdmin_RequiresCredentials(t *testing.T) {
	t.Setenv("BOOKBRIEF_ADMIN_PASSWORD", "")
	_, err := execute(t, "create-admin", "--db", filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
}

func TestRead_PrintsChapterWithNeighbours(t *testing.T) {
	f := newCLIFixture(t)

	out, err := execute(t, f.remote("read", "deep-work", "1")...)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Deep Work by Cal Newport")
	assert.Contains(t, out, "[2/3] The Idea")
	assert.Contains(t, out, "Depth is valuable.")
	assert.Contains(t, out, "previous: /book/deep-work/introduction")
	assert.Contains(t, out, "next: /book/deep-work/2 (The Rules)")

	book, err := f.app.Books.GetBook(context.Background(), "deep-work")
	require.NoError(t, err)
	assert.Equal(t, int64(1), book.TotalReads)
}

func TestRead_NextPushesRoute(t *testing.T) {
	f := newCLIFixture(t)

	out, err := execute(t, f.remote("read", "deep-work", "--next", "5", "--count=false")...)
	require.NoError(t, err, out)

	assert.Contains(t, out, "-> /book/deep-work/1")
	assert.Contains(t, out, "-> /book/deep-work/2")
	assert.Contains(t, out, "[3/3] The Rules")
	assert.NotContains(t, out, "next:")
}

func TestRead_InvalidChapter(t *testing.T) {
	f := newCLIFixture(t)

	_, err := execute(t, f.remote("read", "deep-work", "01")...)
	require.Error(t, err)
}

func TestSearch(t *testing.T) {
	f := newCLIFixture(t)

	out, err := execute(t, f.remote("search", "deep")...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "deep-work")
	assert.Contains(t, out, "1 books")

	out, err = execute(t, f.remote("search", "nothing-matches")...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 books")
}

func TestSearch_BadCredentials(t *testing.T) {
	f := newCLIFixture(t)

	_, err := execute(t, "search", "deep", "--server", f.server.URL, "--email", "admin@example.com", "--password", "wrong-password")
	require.Error(t, err)
}
