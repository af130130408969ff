package sheet

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bobmcallan/nav-portal/internal/config"
	"github.com/bobmcallan/nav-portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/portfolio.csv")
	require.NoError(t, err)
	return data
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_Fixture(t *testing.T) {
	table, err := Parse(loadFixture(t), config.NewDefaultConfig().Sheet)
	require.NoError(t, err)

	t.Run("header figures", func(t *testing.T) {
		assert.Equal(t, models.HeaderFigures{
			PortfolioValue: 1000,
			AbsoluteGain:   250,
			BenchmarkValue: 24500,
			XIRR:           18.5,
			PreviousValue:  900,
		}, table.Header)
	})

	t.Run("rows sorted ascending", func(t *testing.T) {
		require.Len(t, table.Rows, 5)
		assert.True(t, table.HasDateColumn)
		assert.True(t, date(2025, 3, 3).Equal(table.Rows[0].Date))
		assert.True(t, date(2025, 3, 7).Equal(table.Rows[4].Date))
		navs := make([]float64, len(table.Rows))
		for i, r := range table.Rows {
			navs[i] = r.NAV
		}
		assert.Equal(t, []float64{100, 95, 90, 100, 110}, navs)
	})

	t.Run("drawdown back-filled", func(t *testing.T) {
		assert.True(t, table.HasDrawdown)
		var dd, bdd []float64
		for _, r := range table.Rows {
			dd = append(dd, r.Drawdown)
			bdd = append(bdd, r.BenchmarkDrawdown)
		}
		assert.Equal(t, []float64{0, -5, -10, 0, 0}, dd)
		assert.Equal(t, []float64{0, -200, 0, -100, 0}, bdd)
	})

	t.Run("numeric coercion", func(t *testing.T) {
		last := table.Rows[4]
		assert.Equal(t, 24500.0, last.BenchmarkValue)
		assert.Equal(t, 0.41, last.BenchmarkChangePct)
		assert.Equal(t, 10.53, last.DayChangePct)
		assert.Equal(t, 1000.0, last.CurrentValue)
	})

	t.Run("holdings", func(t *testing.T) {
		assert.Equal(t, []models.Holding{
			{Name: "INFY", ChangePct: 2.1},
			{Name: "TCS", ChangePct: -1.2},
			{Name: "HDFC", ChangePct: 0.4},
			{Name: "ITC", ChangePct: 0},
		}, table.Holdings)
	})

	t.Run("movers", func(t *testing.T) {
		assert.Equal(t, []models.Mover{
			{Name: "TCS", Price: 3500, ChangePct: 4.2},
			{Name: "HDFC", Price: 1650, ChangePct: 2.5},
		}, table.Gainers)
		assert.Equal(t, []models.Mover{
			{Name: "WIPRO", Price: 450, ChangePct: -3.1},
			{Name: "ITC", Price: 410, ChangePct: -1.8},
		}, table.Losers)
		assert.Empty(t, table.Warnings)
	})
}

func TestParse_DrawdownFromNAV(t *testing.T) {
	csv := "portfolio value,absolute gain,nifty50,date,nav\n" +
		"1,2,3,2025-01-01,100\n" +
		"0,0,0,2025-01-02,110\n" +
		"5,0,0,2025-01-03,90\n" +
		"0,0,0,2025-01-04,95\n" +
		"4,0,0,2025-01-05,95\n"

	table, err := Parse([]byte(csv), config.NewDefaultConfig().Sheet)
	require.NoError(t, err)

	var dd []float64
	for _, r := range table.Rows[:4] {
		dd = append(dd, r.Drawdown)
	}
	assert.Equal(t, []float64{0, 0, -20, -15}, dd)
}

func TestParse_ExistingDrawdownKept(t *testing.T) {
	csv := "portfolio value,absolute gain,nifty50,date,nav,dd\n" +
		"1,0,0,2025-01-01,100,-3\n" +
		"0,0,0,2025-01-02,110,-4\n" +
		"0,0,0,2025-01-03,90,-5\n" +
		"0,0,0,2025-01-04,95,-6\n" +
		"0,0,0,2025-01-05,95,-7\n"

	table, err := Parse([]byte(csv), config.NewDefaultConfig().Sheet)
	require.NoError(t, err)
	assert.Equal(t, -3.0, table.Rows[0].Drawdown)
	assert.Equal(t, -7.0, table.Rows[4].Drawdown)
}

func TestParse_NoDrawdownNoNAV(t *testing.T) {
	csv := "portfolio value,absolute gain,nifty50,date\n" +
		"1,0,0,2025-01-01\n0,0,0,2025-01-02\n0,0,0,2025-01-03\n0,0,0,2025-01-04\n0,0,0,2025-01-05\n"

	table, err := Parse([]byte(csv), config.NewDefaultConfig().Sheet)
	require.NoError(t, err)
	assert.False(t, table.HasDrawdown)
}

func TestParse_NoDateColumn(t *testing.T) {
	csv := "portfolio value,absolute gain,nifty50,nav\n" +
		"1,0,0,100\n0,0,0,101\n0,0,0,102\n0,0,0,103\n0,0,0,104\n"

	table, err := Parse([]byte(csv), config.NewDefaultConfig().Sheet)
	require.NoError(t, err)
	assert.False(t, table.HasDateColumn)
	assert.Len(t, table.Rows, 5)
	assert.Empty(t, table.DatedRows())
}

func TestParse_UndatedRowsTrail(t *testing.T) {
	csv := "portfolio value,absolute gain,nifty50,date,nav\n" +
		"1,0,0,bad,1\n0,0,0,2025-01-03,3\n0,0,0,,2\n0,0,0,2025-01-01,4\n0,0,0,2025-01-02,5\n"

	table, err := Parse([]byte(csv), config.NewDefaultConfig().Sheet)
	require.NoError(t, err)

	var navs []float64
	for _, r := range table.Rows {
		navs = append(navs, r.NAV)
	}
	assert.Equal(t, []float64{4, 5, 3, 1, 2}, navs)
	assert.Len(t, table.DatedRows(), 3)
}

func TestParse_SchemaMismatchNamesEveryField(t *testing.T) {
	csv := "date,nav\n2025-01-01,100\n"

	_, err := Parse([]byte(csv), config.NewDefaultConfig().Sheet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	for _, field := range []string{"portfolio_value", "absolute_gain", "benchmark_value", "xirr", "previous_value"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestParse_RowOutOfRange(t *testing.T) {
	csv := "portfolio value,absolute gain,nifty50,date,nav\n1,2,3,2025-01-01,100\n"

	_, err := Parse([]byte(csv), config.NewDefaultConfig().Sheet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "xirr: row 2 out of range")
	assert.NotContains(t, err.Error(), "absolute_gain")
}

func TestParse_PinnedIndex(t *testing.T) {
	cfg := config.NewDefaultConfig().Sheet
	cfg.Header.BenchmarkValue = config.HeaderField{Index: 2, Row: 0}

	csv := "portfolio value,absolute gain,,date,nav\n" +
		"1,2,3,2025-01-01,100\n0,0,0,,\n9,0,0,,\n0,0,0,,\n8,0,0,,\n"

	table, err := Parse([]byte(csv), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3.0, table.Header.BenchmarkValue)
	assert.Equal(t, 9.0, table.Header.XIRR)
	assert.Equal(t, 8.0, table.Header.PreviousValue)
}

func TestParse_MissingOptionalColumnsWarn(t *testing.T) {
	csv := "portfolio value,absolute gain,nifty50,date,nav\n" +
		"1,0,0,2025-01-01,100\n0,0,0,,\n0,0,0,,\n0,0,0,,\n0,0,0,,\n"

	table, err := Parse([]byte(csv), config.NewDefaultConfig().Sheet)
	require.NoError(t, err)
	assert.Empty(t, table.Holdings)
	assert.Empty(t, table.Gainers)
	assert.Empty(t, table.Losers)
	assert.Len(t, table.Warnings, 3)
	assert.Contains(t, table.Warnings[0], "Heatmap unavailable")
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil, config.NewDefaultConfig().Sheet)
	assert.ErrorIs(t, err, ErrEmptySheet)
}
