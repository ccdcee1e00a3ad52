package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"fintrack/internal/mail"
	"fintrack/internal/services"
	"fintrack/internal/storage/memory"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []map[string]string
	err   error
}

func (f *fakeNotifier) Send(_ context.Context, params map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	return f.err
}

func newTestServer(t *testing.T, notifierErr error) (*httptest.Server, *Server) {
	t.Helper()

	store := memory.NewStore()
	notifier := &fakeNotifier{err: notifierErr}
	txSvc := services.NewTransactionService(store, notifier, nil, time.Second)
	mailSvc := services.NewMailService(store, notifier, "fallback@example.com", time.Second)

	s := NewServer("127.0.0.1:0", txSvc, mailSvc)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return ts, s
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, client *http.Client, method, url, body string) (int, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env testEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, env
}

const coffeeBody = `{"title":"Coffee","amount":"3.50","type":"expense","category":"Food","description":"espresso","date":"2025-02-10"}`

func TestCreateAndListTransactions(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	status, env := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction", coffeeBody)
	if status != http.StatusCreated {
		t.Fatalf("create status: %d (%s)", status, env.Error)
	}
	if !env.Success {
		t.Fatalf("expected success envelope: %+v", env)
	}

	var created createdPayload
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created payload: %v", err)
	}
	if created.SavedButEmailFailed {
		t.Fatal("no email was requested, flag must be unset")
	}
	if created.Transaction.Amount != "3.50" || created.Transaction.Status != "success" {
		t.Fatalf("unexpected record: %+v", created.Transaction)
	}

	status, env = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/api/v1/get-transactions", "")
	if status != http.StatusOK {
		t.Fatalf("list status: %d", status)
	}
	var views []transactionView
	if err := json.Unmarshal(env.Data, &views); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 record, got %d", len(views))
	}
	if !views[0].Editable {
		t.Fatal("a record created moments ago must be editable")
	}
}

func TestCreateRejectsNegativeAmount(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	body := `{"title":"Bad","amount":-5,"type":"expense","category":"x","description":"y","date":"2025-02-10"}`
	status, env := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction", body)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if env.Success {
		t.Fatal("expected failure envelope")
	}

	status, env = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/api/v1/get-transactions", "")
	var views []transactionView
	_ = json.Unmarshal(env.Data, &views)
	if status != http.StatusOK || len(views) != 0 {
		t.Fatalf("rejected transaction must not be stored: %d, %d records", status, len(views))
	}
}

func TestCreateWithFailingRelayReturnsPartialSuccess(t *testing.T) {
	relayErr := &mail.DeliveryError{StatusCode: 403, Body: "invalid key"}
	ts, _ := newTestServer(t, relayErr)

	body := `{"title":"Coffee","amount":"3.50","type":"expense","category":"Food","description":"espresso","date":"2025-02-10","email":"user@example.com"}`
	status, env := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction", body)
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
	if env.Success {
		t.Fatal("partial success must not report success")
	}
	if env.Error == "" {
		t.Fatal("provider error must be surfaced")
	}

	var created createdPayload
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created payload: %v", err)
	}
	if !created.SavedButEmailFailed {
		t.Fatal("savedButEmailFailed flag must be set")
	}
	if created.Transaction.Status != "pending" {
		t.Fatalf("record must stay pending, got %q", created.Transaction.Status)
	}

	// The record survived despite the failed notice.
	_, env = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/api/v1/get-transactions", "")
	var views []transactionView
	_ = json.Unmarshal(env.Data, &views)
	if len(views) != 1 {
		t.Fatalf("expected the saved record, got %d", len(views))
	}
}

func TestUpdateTransaction(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	_, env := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction", coffeeBody)
	var created createdPayload
	_ = json.Unmarshal(env.Data, &created)

	update := `{"title":"Fancy coffee","amount":8,"type":"expense","category":"Food","description":"flat white","date":"2025-02-11"}`
	status, env := doJSON(t, ts.Client(), http.MethodPut, ts.URL+"/api/v1/update-transaction/"+created.Transaction.ID, update)
	if status != http.StatusOK {
		t.Fatalf("update status: %d (%s)", status, env.Error)
	}
	var updated transactionView
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updated.Title != "Fancy coffee" || updated.Amount != "8.00" {
		t.Fatalf("not updated: %+v", updated)
	}
	if updated.ID != created.Transaction.ID {
		t.Fatal("id must not change on update")
	}

	status, _ = doJSON(t, ts.Client(), http.MethodPut, ts.URL+"/api/v1/update-transaction/missing", update)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", status)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	_, env := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction", coffeeBody)
	var created createdPayload
	_ = json.Unmarshal(env.Data, &created)

	status, _ := doJSON(t, ts.Client(), http.MethodDelete, ts.URL+"/api/v1/delete-transaction/"+created.Transaction.ID, "")
	if status != http.StatusOK {
		t.Fatalf("delete status: %d", status)
	}

	status, _ = doJSON(t, ts.Client(), http.MethodDelete, ts.URL+"/api/v1/delete-transaction/"+created.Transaction.ID, "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", status)
	}
}

func TestTriggerSummary(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	income := `{"title":"Salary","amount":"5000","type":"income","category":"Work","description":"monthly","date":"2025-02-01"}`
	expense := `{"title":"Rent","amount":"1500","type":"expense","category":"Housing","description":"feb","date":"2025-02-03"}`
	doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction", income)
	doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction", expense)

	status, env := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/mail/trigger-summary", `{"email":"user@example.com"}`)
	if status != http.StatusOK {
		t.Fatalf("summary status: %d (%s)", status, env.Error)
	}
	var sv summaryView
	if err := json.Unmarshal(env.Data, &sv); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sv.Income != "5000.00" || sv.Expense != "1500.00" || sv.Balance != "3500.00" {
		t.Fatalf("unexpected totals: %+v", sv)
	}
	if sv.HealthScore != 70 {
		t.Fatalf("health score: %d", sv.HealthScore)
	}
}

func TestTriggerSummaryRelayFailure(t *testing.T) {
	ts, _ := newTestServer(t, &mail.DeliveryError{StatusCode: 500, Body: "boom"})

	status, env := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/mail/trigger-summary", "")
	if status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", status)
	}
	if env.Error == "" {
		t.Fatal("provider error must be surfaced")
	}
}

func TestTriggerMotivation(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	status, env := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/mail/trigger-motivation", "")
	if status != http.StatusOK {
		t.Fatalf("motivation status: %d (%s)", status, env.Error)
	}
	var qv quoteView
	if err := json.Unmarshal(env.Data, &qv); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if qv.Quote == "" || qv.Author == "" {
		t.Fatalf("empty quote: %+v", qv)
	}
}

func TestMailWithoutRelay(t *testing.T) {
	store := memory.NewStore()
	txSvc := services.NewTransactionService(store, nil, nil, time.Second)
	s := NewServer("127.0.0.1:0", txSvc, nil)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})

	status, _ := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/mail/trigger-summary", "")
	if status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a relay, got %d", status)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCreateLogsThroughProcessLogger(t *testing.T) {
	var out syncBuffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&out, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ts, _ := newTestServer(t, nil)

	status, _ := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction", coffeeBody)
	if status != http.StatusCreated {
		t.Fatalf("create status: %d", status)
	}

	if !strings.Contains(out.String(), "Transaction created successfully") {
		t.Fatal("creation log did not reach the installed process logger")
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := ts.Client().Get(ts.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status: %d", path, resp.StatusCode)
		}
	}

	status, env := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/metrics", "")
	if status != http.StatusOK || !env.Success {
		t.Fatalf("metrics: %d, %+v", status, env)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := ts.Client().Get(ts.URL + "/api/v1/get-transactions")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("missing security header, got %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("missing frame options, got %q", got)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	var limited bool
	for i := 0; i < 70; i++ {
		status, _ := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/api/v1/add-transaction",
			fmt.Sprintf(`{"title":"t%d","amount":1,"type":"expense","category":"c","description":"d","date":"2025-02-10"}`, i))
		if status == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected the limiter to trip on sustained mutations")
	}

	// Reads stay unthrottled.
	status, _ := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/api/v1/get-transactions", "")
	if status != http.StatusOK {
		t.Fatalf("read was throttled: %d", status)
	}
}
