package sheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/intake/pkg/adapters/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheets emulates the two Sheets endpoints the ledger uses.
type fakeSheets struct {
	mu     sync.Mutex
	values [][]any
	paths  []string
	fail   bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.URL.Path)

	if f.fail {
		http.Error(w, `{"error":{"code":400,"message":"bad request"}}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.values = append(f.values, body.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sheet-id"})
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.values})
	default:
		http.NotFound(w, r)
	}
}

func newLedger(t *testing.T, fake *fakeSheets) *sheets.Ledger {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ledger, err := sheets.New(context.Background(), "sheet-id", "Requests",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return ledger
}

func TestSheetsLedger_AppendAndRead(t *testing.T) {
	fake := &fakeSheets{}
	ledger := newLedger(t, fake)
	ctx := context.Background()

	row := []string{"2024-03-01 10:30", "Ann", "no username", "42", "2.5m x 2m", "Modern", "MDF", "none"}
	require.NoError(t, ledger.AppendRow(ctx, row))

	rows, err := ledger.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{row}, rows)

	require.NotEmpty(t, fake.paths)
	assert.Contains(t, fake.paths[0], "/spreadsheets/sheet-id/values/")
}

func TestSheetsLedger_Failure(t *testing.T) {
	ledger := newLedger(t, &fakeSheets{fail: true})

	err := ledger.AppendRow(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestNew_RequiresSpreadsheet(t *testing.T) {
	_, err := sheets.New(context.Background(), "", "", option.WithoutAuthentication())
	assert.Error(t, err)
}
