// README: Smoke/bench cases for the CareBridge API; includes HTTP, DB, Redis, race and throughput checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "DB reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "dsn not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "profile cache reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not set"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migration SQL",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables from migrations/0001_init.sql",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "dsn not set"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("tables=%d", len(tables))}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", "", nil, []int{200}),
		httpCaseMethod("API: metrics exposed", http.MethodGet, base+"/metrics", "", nil, []int{200}),

		// Catalogs
		httpCaseMethod("Catalog: nursing", http.MethodGet, base+"/nursing-prices", "", nil, []int{200}),
		httpCaseMethod("Catalog: physiotherapy", http.MethodGet, base+"/physiotherapy-prices", "", nil, []int{200}),
		httpCaseMethod("Catalog: ambulance", http.MethodGet, base+"/ambulance-prices", "", nil, []int{200}),

		// Quotes
		{
			Name:  "Quote: nurse-12h in Hyderabad",
			Focus: "tier-1 city adjustment",
			Run: func(ctx context.Context, r *Runner) Result {
				var out struct {
					FinalPrice int64 `json:"finalPrice"`
				}
				status, latency, err := r.postJSON(ctx, base+"/quotes/nursing", "", map[string]any{
					"serviceCode": "nurse-12h",
					"city":        "Hyderabad",
				}, &out)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if status != http.StatusOK || out.FinalPrice != 1440 {
					return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d finalPrice=%d", status, out.FinalPrice)}
				}
				return Result{Status: statusPass, Latency: latency}
			},
		},
		httpCase("Quote: physiotherapy with add-ons", base+"/quotes/physiotherapy", "", map[string]any{
			"serviceCode":       "ortho-rehab",
			"city":              "Pune",
			"isSundayHoliday":   true,
			"isExtendedSession": true,
		}, []int{200}),
		httpCase("Quote: unknown service -> 400", base+"/quotes/nursing", "", map[string]any{
			"serviceCode": "does-not-exist",
		}, []int{400}),
		httpCase("Quote: ambulance by distance", base+"/quotes/ambulance", "", map[string]any{
			"ambulanceType": "bls",
			"distanceKm":    12.5,
			"city":          "Chennai",
		}, []int{200}),
		httpCase("Quote: ambulance by coordinates", base+"/quotes/ambulance", "", map[string]any{
			"ambulanceType": "als",
			"pickup":        map[string]float64{"lat": 17.385, "lng": 78.4867},
			"drop":          map[string]float64{"lat": 17.4399, "lng": 78.4983},
			"city":          "Hyderabad",
			"isEmergency":   true,
		}, []int{200}),
		httpCase("Quote: ambulance without distance -> 400", base+"/quotes/ambulance", "", map[string]any{
			"ambulanceType": "bls",
		}, []int{400}),

		// Orders
		httpCaseMethod("Order: list without token -> 401", http.MethodGet, base+"/service-orders", "", nil, []int{401}),
		tokenCase("Order: create (valid)", func(ctx context.Context, r *Runner) Result {
			_, status, latency, err := r.createOrder(ctx)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if status != http.StatusCreated {
				return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: statusPass, Latency: latency}
		}),
		tokenCase("Order: create (missing fields -> 400)", func(ctx context.Context, r *Runner) Result {
			status, latency, err := r.postJSON(ctx, base+"/service-orders", r.cfg.PatientToken, map[string]any{}, nil)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if status != http.StatusBadRequest {
				return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: statusPass, Latency: latency}
		}),

		// Concurrency
		{
			Name:  "Concurrency: multi accept same order",
			Focus: "exactly one partner wins",
			Run:   concurrentAccept,
		},

		// Performance
		{
			Name:  "Perf: quote throughput",
			Focus: "nursing quotes under load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/quotes/nursing", map[string]any{
					"serviceCode": "nurse-visit",
					"city":        "Visakhapatnam",
					"isNightDuty": true,
				})
			},
		},
	}
}

func httpCase(name, url, token string, body any, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, token, body, okStatuses)
}

func httpCaseMethod(name, method, url, token string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, err := r.do(ctx, method, url, token, body, nil)
			latency := time.Since(start)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if contains(okStatuses, status) {
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

// tokenCase skips when no patient token was supplied.
func tokenCase(name string, run func(ctx context.Context, r *Runner) Result) TestCase {
	return TestCase{
		Name:  name,
		Focus: "authenticated order API",
		Run: func(ctx context.Context, r *Runner) Result {
			if r.cfg.PatientToken == "" {
				return Result{Status: statusSkip, Note: "patient token not set"}
			}
			return run(ctx, r)
		},
	}
}

func (r *Runner) do(ctx context.Context, method, url, token string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
		return resp.StatusCode, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (r *Runner) postJSON(ctx context.Context, url, token string, body, out any) (int, time.Duration, error) {
	start := time.Now()
	status, err := r.do(ctx, http.MethodPost, url, token, body, out)
	return status, time.Since(start), err
}

func (r *Runner) createOrder(ctx context.Context) (string, int, time.Duration, error) {
	var out struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	status, latency, err := r.postJSON(ctx, r.cfg.BaseURL+"/service-orders", r.cfg.PatientToken, map[string]any{
		"patient_name":      "Bench Patient",
		"patient_contact":   "+910000000000",
		"address":           "Banjara Hills, Hyderabad",
		"location":          map[string]float64{"lat": 17.4156, "lng": 78.4347},
		"service_type":      "Home Nurse (12 hours)",
		"service_category":  "Nursing",
		"issue_description": "bench run",
		"urgency":           "normal",
	}, &out)
	return out.Order.ID, status, latency, err
}

func concurrentAccept(ctx context.Context, r *Runner) Result {
	if r.cfg.PatientToken == "" || len(r.cfg.PartnerTokens) == 0 {
		return Result{Status: statusSkip, Note: "patient and partner tokens required"}
	}
	id, status, _, err := r.createOrder(ctx)
	if err != nil || status != http.StatusCreated {
		return Result{Status: statusFail, Note: fmt.Sprintf("create order: status=%d err=%v", status, err)}
	}
	url := r.cfg.BaseURL + "/service-orders/" + id + "/accept"

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		succ     int
		conflict int
		other    int
	)
	start := time.Now()
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			status, err := r.do(ctx, http.MethodPost, url, token, nil, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				other++
			case status == http.StatusOK:
				succ++
			case status == http.StatusConflict:
				conflict++
			default:
				other++
			}
		}(r.cfg.PartnerTokens[i%len(r.cfg.PartnerTokens)])
	}
	wg.Wait()

	note := fmt.Sprintf("success=%d conflict=%d other=%d", succ, conflict, other)
	if succ == 1 && other == 0 {
		return Result{Status: statusPass, Latency: time.Since(start), Note: note}
	}
	return Result{Status: statusFail, Latency: time.Since(start), Note: note}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var (
		count    int64
		errCount int64
		mu       sync.Mutex
		wg       sync.WaitGroup
	)

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, err := r.do(ctx, http.MethodPost, url, "", payload, nil)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
