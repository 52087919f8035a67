package dart

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scorecard/pkg/httputil"
	"github.com/wonny/scorecard/pkg/logger"
)

const samsungAccounts = `{
  "status": "000",
  "message": "정상",
  "list": [
    {"sj_div": "BS", "account_id": "ifrs-full_Assets", "thstrm_amount": "1,200", "frmtrm_amount": "1,000", "bfefrmtrm_amount": "900"},
    {"sj_div": "BS", "account_id": "ifrs-full_Liabilities", "thstrm_amount": "300", "frmtrm_amount": "280", "bfefrmtrm_amount": ""},
    {"sj_div": "BS", "account_id": "ifrs-full_Equity", "thstrm_amount": "900", "frmtrm_amount": "720", "bfefrmtrm_amount": "625"},
    {"sj_div": "BS", "account_id": "ifrs-full_CurrentAssets", "thstrm_amount": "500", "frmtrm_amount": "", "bfefrmtrm_amount": ""},
    {"sj_div": "BS", "account_id": "ifrs-full_CurrentLiabilities", "thstrm_amount": "250", "frmtrm_amount": "", "bfefrmtrm_amount": ""},
    {"sj_div": "IS", "account_id": "ifrs-full_Revenue", "thstrm_amount": "1,000", "frmtrm_amount": "900", "bfefrmtrm_amount": "640"},
    {"sj_div": "IS", "account_id": "dart_OperatingIncomeLoss", "thstrm_amount": "150", "frmtrm_amount": "", "bfefrmtrm_amount": ""},
    {"sj_div": "IS", "account_id": "ifrs-full_FinanceCosts", "thstrm_amount": "15", "frmtrm_amount": "", "bfefrmtrm_amount": ""},
    {"sj_div": "IS", "account_id": "ifrs-full_ProfitLoss", "thstrm_amount": "162", "frmtrm_amount": "120", "bfefrmtrm_amount": "(10)"},
    {"sj_div": "CIS", "account_id": "ifrs-full_ProfitLoss", "thstrm_amount": "999", "frmtrm_amount": "", "bfefrmtrm_amount": ""},
    {"sj_div": "CF", "account_id": "ifrs-full_CashFlowsFromUsedInOperatingActivities", "thstrm_amount": "194.4", "frmtrm_amount": "", "bfefrmtrm_amount": ""}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.NewNop()
	return NewClient("test-key", srv.URL, httputil.New(log).DisableRetry(), log)
}

func TestFetchAnnualStatement(t *testing.T) {
	var fsDivs []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fnlttSinglAcntAll.json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("crtfc_key"))
		assert.Equal(t, "00126380", r.URL.Query().Get("corp_code"))
		assert.Equal(t, "2024", r.URL.Query().Get("bsns_year"))
		assert.Equal(t, ReportAnnual, r.URL.Query().Get("reprt_code"))

		fsDiv := r.URL.Query().Get("fs_div")
		fsDivs = append(fsDivs, fsDiv)
		if fsDiv == "CFS" {
			_, _ = w.Write([]byte(`{"status":"013","message":"조회된 데이타가 없습니다."}`))
			return
		}
		_, _ = w.Write([]byte(samsungAccounts))
	})

	stmt, err := client.FetchAnnualStatement(context.Background(), "00126380", 2024)
	require.NoError(t, err)

	assert.Equal(t, []string{"CFS", "OFS"}, fsDivs)
	assert.Equal(t, "OFS", stmt.FsDiv)
	require.Contains(t, stmt.Accounts, AccNetIncome)
	// IS 값이 CIS 중복보다 우선
	assert.Equal(t, 162.0, *stmt.Accounts[AccNetIncome].Current)
	assert.Equal(t, -10.0, *stmt.Accounts[AccNetIncome].PriorPrior)
	assert.Nil(t, stmt.Accounts[AccLiabilities].PriorPrior)
}

func TestFetchAnnualStatement_NoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"013","message":"조회된 데이타가 없습니다."}`))
	})

	_, err := client.FetchAnnualStatement(context.Background(), "00126380", 2024)
	assert.True(t, errors.Is(err, ErrNoStatement))
}

func TestFetchAnnualStatement_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"010","message":"등록되지 않은 키입니다."}`))
	})

	_, err := client.FetchAnnualStatement(context.Background(), "00126380", 2024)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoStatement))
	assert.Contains(t, err.Error(), "010")
}

func TestFetchAnnualStatement_HTTPStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchAnnualStatement(context.Background(), "00126380", 2024)
	var statusErr *httputil.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestFetchLatestAnnualStatement_WalksBack(t *testing.T) {
	var years []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		year := r.URL.Query().Get("bsns_year")
		if r.URL.Query().Get("fs_div") == "CFS" {
			years = append(years, year)
		}
		if year == "2023" {
			_, _ = w.Write([]byte(samsungAccounts))
			return
		}
		_, _ = w.Write([]byte(`{"status":"013","message":"no data"}`))
	})

	stmt, err := client.FetchLatestAnnualStatement(context.Background(), "00126380", 2024)
	require.NoError(t, err)
	assert.Equal(t, 2023, stmt.Year)
	assert.Equal(t, []string{"2024", "2023"}, years)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"1,234,567", ptr(1234567)},
		{"-1234", ptr(-1234)},
		{"(1,000)", ptr(-1000)},
		{" 12.5 ", ptr(12.5)},
		{"", nil},
		{"-", nil},
		{"abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseAmount(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func ptr(v float64) *float64 { return &v }
