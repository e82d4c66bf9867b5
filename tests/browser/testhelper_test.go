package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	emailPkg "linecheck/internal/adapters/email"
	web "linecheck/internal/adapters/http"
	"linecheck/internal/adapters/http/middleware"
	"linecheck/internal/adapters/http/perf"
	"linecheck/internal/adapters/storage"
	accountStore "linecheck/internal/adapters/storage/account"
	billingStore "linecheck/internal/adapters/storage/billing"
	blogStore "linecheck/internal/adapters/storage/blog"
	distributionStore "linecheck/internal/adapters/storage/distribution"
	leadStore "linecheck/internal/adapters/storage/lead"
	locationStore "linecheck/internal/adapters/storage/location"
	microcheckStore "linecheck/internal/adapters/storage/microcheck"
	pulseStore "linecheck/internal/adapters/storage/pulsesurvey"
	reviewStore "linecheck/internal/adapters/storage/review"
	"linecheck/internal/application/orchestrators"
)

const testPassword = "TestPass123!"

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
	tmpDir  string
}

// newTestApp creates a fully wired app with a temp SQLite DB and starts an HTTP server.
// The demo seed gives it one account per role, a location, and a check template,
// all sharing testPassword.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	acctStore := accountStore.NewSQLiteStore(db)
	locStore := locationStore.NewSQLiteStore(db)
	tplStore := microcheckStore.NewTemplateSQLiteStore(db)
	subStore := billingStore.NewSQLiteStore(db)
	stores := &web.Stores{
		AccountStore:         acctStore,
		ActivationTokenStore: accountStore.NewTokenSQLiteStore(db),
		LocationStore:        locStore,
		TemplateStore:        tplStore,
		RunStore:             microcheckStore.NewRunSQLiteStore(db),
		MagicTokenStore:      microcheckStore.NewTokenSQLiteStore(db),
		ResponseStore:        microcheckStore.NewResponseSQLiteStore(db),
		DeliveryStore:        distributionStore.NewSQLiteStore(db),
		SurveyStore:          pulseStore.NewSQLiteStore(db),
		PulseResponseStore:   pulseStore.NewResponseSQLiteStore(db),
		ReviewStore:          reviewStore.NewSQLiteStore(db),
		SubscriptionStore:    subStore,
		PostStore:            blogStore.NewSQLiteStore(db),
		LeadStore:            leadStore.NewSQLiteStore(db),
	}

	ctx := context.Background()
	seedDeps := orchestrators.SeedDeps{
		AccountStore:      acctStore,
		LocationStore:     locStore,
		TemplateStore:     tplStore,
		SubscriptionStore: subStore,
	}
	if err := orchestrators.ExecuteSeedAdmin(ctx, seedDeps, "admin@test.com", testPassword); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	if err := orchestrators.ExecuteSeedDemo(ctx, seedDeps, testPassword); err != nil {
		t.Fatalf("failed to seed demo data: %v", err)
	}

	web.SetEmailSender(emailPkg.NewNoopSender(), "LineCheck <noreply@test.local>", "hello@test.local")

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	collector := perf.NewCollector(perf.DefaultRingSize)
	mux := web.NewMux("static", stores, collector)
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
		tmpDir:  tmpDir,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login logs in as the given seeded account and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=Email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=Password]").Fill(testPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/app/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}

// fetchJSON runs a same-origin fetch inside the page so session and CSRF
// cookies apply, returning the raw response body.
func (a *testApp) fetchJSON(t *testing.T, page playwright.Page, path string) string {
	t.Helper()
	raw, err := page.Evaluate(`path => fetch(path).then(r => r.text())`, path)
	if err != nil {
		t.Fatalf("fetch %s failed: %v", path, err)
	}
	body, ok := raw.(string)
	if !ok {
		t.Fatalf("fetch %s returned %T, want string", path, raw)
	}
	return body
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
