//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "review_absa/internal/adapters/http_server"
	redisad "review_absa/internal/adapters/redis"
	"review_absa/internal/app"
	"review_absa/internal/bootstrap"
	"review_absa/internal/domain"
	"review_absa/internal/shared"
	mysqlrepo "review_absa/internal/storage/mysql"
)

// ---------- helpers ----------

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=absa"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/absa?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

// corpusVersion reads the JSON-encoded insights version the services keep in redis.
func corpusVersion(t *testing.T, mr *miniredis.Miniredis) string {
	t.Helper()
	raw, err := mr.Get("absa:insights:version")
	if err != nil {
		t.Fatalf("read insights version: %v", err)
	}
	var v string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode insights version %q: %v", raw, err)
	}
	return v
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

// ---------- the test ----------

func TestHTTP_EndToEnd_IngestAndInsights(t *testing.T) {
	db := startMySQL(t)
	mr := miniredis.RunT(t)

	cfg := shared.Config{
		ClassifierBackend:   "linear",
		ModelPath:           filepath.Join("..", "..", "artifacts", "sentiment_model.json"),
		HighRatingThreshold: 4,
		RootCauseTopN:       10,
		InsightsPartitions:  2,
	}
	ctx := context.Background()
	pipeline, err := bootstrap.Pipeline(ctx, cfg)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	repo := mysqlrepo.New(db)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		A: app.NewAnalysisService(pipeline, repo, cache),
		Q: app.NewInsightsService(repo, cache, bootstrap.Insights(cfg), time.Minute),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	for _, body := range []string{
		`{"id":"r1","review":"Great camera but terrible battery. The battery drains too quickly.","rating":5}`,
		`{"id":"r2","review":"Amazing display and great camera.","rating":5}`,
		`{"id":"r3","review":"The price is okay.","rating":3}`,
	} {
		resp := post(t, ts.URL+"/v1/reviews", body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("ingest: status %d", resp.StatusCode)
		}
	}

	var rm domain.RatingMismatch
	getJSON(t, ts.URL+"/v1/insights/rating-mismatch", &rm)
	if rm.HighRatedReviews != 2 || rm.MismatchedReviews != 1 || rm.MismatchPercentage != 50 {
		t.Fatalf("unexpected mismatch: %+v", rm)
	}
	mismatchKey := "absa:insights:rating-mismatch:" + corpusVersion(t, mr)
	if !mr.Exists(mismatchKey) {
		t.Fatalf("expected rating mismatch to be cached under %s", mismatchKey)
	}

	var rc domain.RootCauses
	getJSON(t, ts.URL+"/v1/insights/root-causes", &rc)
	if len(rc["battery"]) == 0 || rc["battery"][0].Word != "drains" {
		t.Fatalf("unexpected root causes: %+v", rc)
	}

	var view app.AnalysisView
	getJSON(t, ts.URL+"/v1/reviews/r1", &view)
	if view["battery"].Sentiment != domain.Negative || view["camera"].Sentiment != domain.Positive {
		t.Fatalf("unexpected stored analysis: %+v", view)
	}

	// a new review evicts cached insights
	resp := post(t, ts.URL+"/v1/reviews", `{"id":"r4","review":"Terrible battery.","rating":4}`)
	resp.Body.Close()
	if mr.Exists(mismatchKey) {
		t.Fatal("expected cache eviction after ingest")
	}
	if "absa:insights:rating-mismatch:"+corpusVersion(t, mr) == mismatchKey {
		t.Fatal("expected corpus version to move after ingest")
	}
	getJSON(t, ts.URL+"/v1/insights/rating-mismatch", &rm)
	if rm.HighRatedReviews != 3 || rm.MismatchedReviews != 2 {
		t.Fatalf("unexpected mismatch after ingest: %+v", rm)
	}
}
