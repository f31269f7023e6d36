package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "shoptrack/internal/adapters/http"
	"shoptrack/internal/adapters/http/middleware"
	"shoptrack/internal/adapters/http/perf"
	"shoptrack/internal/adapters/storage"
	accountStore "shoptrack/internal/adapters/storage/account"
	rosterStore "shoptrack/internal/adapters/storage/roster"
	weekStore "shoptrack/internal/adapters/storage/week"
	"shoptrack/internal/application/orchestrators"
	"shoptrack/internal/domain/ledger"
)

// Every test app is seeded with this admin account.
const (
	adminEmail    = "admin@test.com"
	adminPassword = "TestPass123!"
)

// currentWeekLabel is the Monday label of the week containing now.
func currentWeekLabel() string {
	return ledger.WeekStartOf(time.Now()).Format(ledger.WeekLabelLayout)
}

// testApp is one running instance of the site with its own database and
// a headless browser pointed at it. Everything it owns is torn down via
// t.Cleanup.
type testApp struct {
	BaseURL string
	Browser playwright.Browser
	Stores  *web.Stores
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	stores := openSeededStores(t)
	baseURL := startSite(t, stores)
	return &testApp{
		BaseURL: baseURL,
		Browser: launchBrowser(t),
		Stores:  stores,
	}
}

// openSeededStores migrates a throwaway SQLite file and returns stores
// backed by it, with the admin account already created.
func openSeededStores(t *testing.T) *web.Stores {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	accounts := accountStore.NewSQLiteStore(db)
	if _, err := orchestrators.ExecuteCreateAccount(context.Background(),
		orchestrators.CreateAccountInput{Email: adminEmail, Password: adminPassword, Role: "admin"},
		orchestrators.CreateAccountDeps{AccountStore: accounts},
	); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return &web.Stores{
		RosterStore:  rosterStore.NewSQLiteStore(db),
		WeekStore:    weekStore.NewSQLiteStore(db),
		AccountStore: accounts,
	}
}

// startSite serves the full site on a free localhost port and blocks
// until it answers. The working directory moves to the project root so
// template and static paths resolve.
func startSite(t *testing.T, stores *web.Stores) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	root := projectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(root); err != nil {
		t.Fatalf("chdir %s: %v", root, err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Both of these are read when the mux is built. The CSRF check must
	// trust the ephemeral port, and the limiter buckets by IP, so the
	// production default of 10 req/s would throttle a suite whose
	// traffic all arrives from 127.0.0.1.
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)
	web.RateLimitPerSecond = 1000

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: web.NewMux("internal/adapters/http/static", stores, perf.NewCollector()),
	}
	go srv.ListenAndServe()
	t.Cleanup(func() { srv.Close() })

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	waitServing(t, baseURL+"/login")
	return baseURL
}

// waitServing polls url until it responds or the deadline passes.
func waitServing(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never answered at %s: %v", url, err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func launchBrowser(t *testing.T) playwright.Browser {
	t.Helper()
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("start playwright: %v", err)
	}
	t.Cleanup(func() { pw.Stop() })

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("launch chromium: %v", err)
	}
	t.Cleanup(func() { browser.Close() })
	return browser
}

// newPage opens a fresh tab with no cookies carried over.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("new page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs the seeded admin in and lands on the roster.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	a.loginAs(t, page, adminEmail, adminPassword)
}

func (a *testApp) loginAs(t *testing.T, page playwright.Page, email, password string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("goto /login: %v", err)
	}
	fill(t, page, "input[name=Email]", email)
	fill(t, page, "input[name=Password]", password)
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("submit login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/roster", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not land on the roster: %v", err)
	}
}

func fill(t *testing.T, page playwright.Page, selector, value string) {
	t.Helper()
	if err := page.Locator(selector).Fill(value); err != nil {
		t.Fatalf("fill %s: %v", selector, err)
	}
}

// projectRoot walks up until it finds go.mod.
func projectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("no go.mod above the test binary's working directory")
		}
		dir = parent
	}
}
