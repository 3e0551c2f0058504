package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/kitty/internal/calculator"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func testReport() Report {
	group := model.Group{
		ID:               "g1",
		Name:             "Harambee",
		SavingsAmount:    decimal.NewFromInt(1000),
		SavingsFrequency: model.FrequencyMonthly,
	}
	summary := calculator.Summarize(group.SavingsAmount, []calculator.MemberContribution{
		{ID: "1", Name: "Amina", TotalContributed: decimal.NewFromInt(500)},
		{ID: "2", Name: "", TotalContributed: decimal.NewFromInt(1500)},
	})
	return Report{
		Group:       group,
		Summary:     summary,
		GeneratedAt: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestSummaryRows(t *testing.T) {
	rows := summaryRows(testReport())

	require.Len(t, rows, headerRows+2)
	assert.Equal(t, []any{"Harambee savings summary"}, rows[0])
	assert.Equal(t, []any{"Generated", "2024-03-15 09:30"}, rows[1])
	assert.Equal(t, []any{"Expected per member", 1000.0, "monthly"}, rows[2])
	assert.Equal(t, []any{"Total group savings", 2000.0}, rows[3])
	assert.Equal(t, "Rank", rows[headerRows-1][0])
	assert.Equal(t, []any{1, "2", 1500.0, 150.0, 75.0}, rows[headerRows])
	assert.Equal(t, []any{2, "Amina", 500.0, 50.0, 25.0}, rows[headerRows+1])
}

type fakeSheetsAPI struct {
	calls   []string
	updates []sheets.ValueRange
	batches []sheets.BatchUpdateSpreadsheetRequest
	mu      sync.Mutex
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && path == "/v4/spreadsheets":
		_, _ = io.WriteString(w, `{"spreadsheetId":"new-1","sheets":[{"properties":{"sheetId":7,"title":"Savings Summary"}}]}`)
	case r.Method == http.MethodGet && path == "/v4/spreadsheets/existing":
		_, _ = io.WriteString(w, `{"spreadsheetId":"existing","sheets":[{"properties":{"sheetId":0,"title":"Other"}},{"properties":{"sheetId":42,"title":"Savings Summary"}}]}`)
	case r.Method == http.MethodGet && path == "/v4/spreadsheets/no-tab":
		_, _ = io.WriteString(w, `{"spreadsheetId":"no-tab","sheets":[{"properties":{"sheetId":0,"title":"Sheet1"}}]}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		_ = json.Unmarshal(body, &req)
		f.batches = append(f.batches, req)
		if len(req.Requests) > 0 && req.Requests[0].AddSheet != nil {
			_, _ = io.WriteString(w, `{"replies":[{"addSheet":{"properties":{"sheetId":99,"title":"Savings Summary"}}}]}`)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr sheets.ValueRange
		_ = json.Unmarshal(body, &vr)
		f.updates = append(f.updates, vr)
		_, _ = io.WriteString(w, `{}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"not found"}}`)
	}
}

func newTestWriter(t *testing.T, config Config) (*Writer, *fakeSheetsAPI) {
	t.Helper()
	api := &fakeSheetsAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	service, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return newWriter(service, config, nil), api
}

func TestWriter_ExportCreatesSpreadsheet(t *testing.T) {
	config := DefaultConfig()
	writer, api := newTestWriter(t, config)

	id, err := writer.Export(context.Background(), testReport())

	require.NoError(t, err)
	assert.Equal(t, "new-1", id)
	assert.Equal(t, "POST /v4/spreadsheets", api.calls[0])

	require.Len(t, api.updates, 1)
	assert.Len(t, api.updates[0].Values, headerRows+2)

	require.Len(t, api.batches, 1)
	for _, req := range api.batches[0].Requests {
		if req.RepeatCell != nil {
			assert.Equal(t, int64(7), req.RepeatCell.Range.SheetId)
		}
	}
}

func TestWriter_ExportExistingSpreadsheet(t *testing.T) {
	config := DefaultConfig()
	config.SpreadsheetID = "existing"
	config.EnableFormatting = false
	writer, api := newTestWriter(t, config)

	id, err := writer.Export(context.Background(), testReport())

	require.NoError(t, err)
	assert.Equal(t, "existing", id)
	assert.Equal(t, "GET /v4/spreadsheets/existing", api.calls[0])
	assert.Contains(t, api.calls[1], ":clear")
	assert.Empty(t, api.batches)
}

func TestWriter_ExportAddsMissingTab(t *testing.T) {
	config := DefaultConfig()
	config.SpreadsheetID = "no-tab"
	writer, api := newTestWriter(t, config)

	_, err := writer.Export(context.Background(), testReport())

	require.NoError(t, err)
	require.Len(t, api.batches, 2)
	require.NotNil(t, api.batches[0].Requests[0].AddSheet)
	assert.Equal(t, DefaultTabName, api.batches[0].Requests[0].AddSheet.Properties.Title)
	last := api.batches[1].Requests[len(api.batches[1].Requests)-1]
	require.NotNil(t, last.UpdateSheetProperties)
	assert.Equal(t, int64(99), last.UpdateSheetProperties.Properties.SheetId)
}

func TestWriter_ExportBatches(t *testing.T) {
	config := DefaultConfig()
	config.BatchSize = 3
	config.EnableFormatting = false
	writer, api := newTestWriter(t, config)

	_, err := writer.Export(context.Background(), testReport())

	require.NoError(t, err)
	require.Len(t, api.updates, 3)
	assert.Len(t, api.updates[0].Values, 3)
	assert.Len(t, api.updates[2].Values, 2)
}

func TestWriter_ExportInaccessibleSpreadsheet(t *testing.T) {
	config := DefaultConfig()
	config.SpreadsheetID = "missing"
	writer, _ := newTestWriter(t, config)

	_, err := writer.Export(context.Background(), testReport())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to access spreadsheet missing")
}

func TestNewWriter_InvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), DefaultConfig(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
