package services

import (
	"testing"

	"gorm.io/gorm"

	"bourse/internal/models"
	"bourse/internal/testutil"
)

func newTestMarketService(db *gorm.DB) MarketServicer {
	return NewMarketService(db, NewPricingService(db, true))
}

func TestStocksByCategory(t *testing.T) {
	t.Run("returns quotes with year-over-year change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		testutil.CreateTestStockFull(t, db, 1, 1949, 10, "music", 1000)
		testutil.CreateTestStockFull(t, db, 1, 1950, 12, "music", 1000)
		testutil.CreateTestStockFull(t, db, 2, 1950, 9, "music", 1000)

		quotes, err := service.StocksByCategory("music", 1950)
		testutil.AssertNoError(t, err)

		if len(quotes) != 2 {
			t.Fatalf("expected 2 quotes, got %d", len(quotes))
		}
		first := quotes[0]
		testutil.AssertClose(t, 12, first.Price)
		testutil.AssertClose(t, 10, first.PreviousPrice)
		testutil.AssertClose(t, 2, first.Change)
		testutil.AssertClose(t, 20, first.PercentageChange)

		// No 1949 listing for stock 2.
		testutil.AssertClose(t, 0, quotes[1].PreviousPrice)
		testutil.AssertClose(t, 0, quotes[1].Change)
	})

	t.Run("unknown category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		_, err := service.StocksByCategory("crypto", 1950)
		testutil.AssertAppError(t, err, "UNKNOWN_CATEGORY")
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("groups stocks by category in display order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		testutil.CreateTestStockFull(t, db, 101, 1950, 15, "music", 1000)
		testutil.CreateTestStockFull(t, db, 51, 1950, 20, "science", 1000)
		testutil.CreateTestStockFull(t, db, 52, 1950, 25, "science", 1000)

		snapshot, err := service.Snapshot(1950)
		testutil.AssertNoError(t, err)

		if len(snapshot) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(snapshot))
		}
		if snapshot[0].Category != "science" || snapshot[1].Category != "music" {
			t.Errorf("unexpected category order: %q, %q", snapshot[0].Category, snapshot[1].Category)
		}
		if len(snapshot[0].Stocks) != 2 {
			t.Errorf("expected 2 science stocks, got %d", len(snapshot[0].Stocks))
		}
	})
}

func TestStockHistory(t *testing.T) {
	t.Run("returns the price series up to the given year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		testutil.CreateTestStock(t, db, 1, 1950, 10)
		testutil.CreateTestStock(t, db, 1, 1951, 12)
		testutil.CreateTestStock(t, db, 1, 1952, 11)

		history, err := service.StockHistory(1, 1951)
		testutil.AssertNoError(t, err)

		if len(history) != 2 {
			t.Fatalf("expected 2 points, got %d", len(history))
		}
		if history[0].Year != 1950 || history[1].Year != 1951 {
			t.Errorf("unexpected ordering: %+v", history)
		}
		testutil.AssertClose(t, 12, history[1].Price)
	})

	t.Run("unknown stock", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		_, err := service.StockHistory(42, 1950)
		testutil.AssertAppError(t, err, "UNKNOWN_STOCK")
	})
}

func TestHistoricalEvents(t *testing.T) {
	t.Run("filters events to the given stocks", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		events := []models.HistoricalEvent{
			{StockID: 1, Category: "music", Name: "Stock 1", Year: 1950, Title: "Breakthrough"},
			{StockID: 2, Category: "music", Name: "Stock 2", Year: 1950, Title: "Scandal"},
			{StockID: 1, Category: "music", Name: "Stock 1", Year: 1951, Title: "Comeback"},
		}
		for i := range events {
			testutil.AssertNoError(t, db.Create(&events[i]).Error)
		}

		filtered, err := service.HistoricalEventsForStocks(1950, []int{1})
		testutil.AssertNoError(t, err)
		if len(filtered) != 1 || filtered[0].Title != "Breakthrough" {
			t.Errorf("unexpected events: %+v", filtered)
		}

		all, err := service.HistoricalEvents(1950)
		testutil.AssertNoError(t, err)
		if len(all) != 2 {
			t.Errorf("expected 2 events for 1950, got %d", len(all))
		}
	})
}

func TestCreateMarketEvent(t *testing.T) {
	t.Run("creates a global event", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		event, err := service.CreateMarketEvent(1929, "Market crash", "", 0.6, 0.8)
		testutil.AssertNoError(t, err)

		if event.Sector != nil {
			t.Errorf("expected global event, got sector %q", *event.Sector)
		}
		testutil.AssertClose(t, 0.6, event.PriceChangeFactor)
	})

	t.Run("lowercases and validates the sector", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		event, err := service.CreateMarketEvent(1950, "Boom", "Science", 1.4, 1.2)
		testutil.AssertNoError(t, err)
		if event.Sector == nil || *event.Sector != "science" {
			t.Errorf("expected sector science, got %+v", event.Sector)
		}

		_, err = service.CreateMarketEvent(1950, "Boom", "crypto", 1.4, 1.2)
		testutil.AssertAppError(t, err, "UNKNOWN_CATEGORY")
	})

	t.Run("rejects non-positive factors", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		_, err := service.CreateMarketEvent(1950, "Bad", "", 0, 1)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects years outside the range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		_, err := service.CreateMarketEvent(1890, "Too early", "", 1.1, 1.1)
		testutil.AssertAppError(t, err, "YEAR_OUT_OF_RANGE")
	})
}

func TestSetDemandModifier(t *testing.T) {
	t.Run("creates then updates the modifier", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		testutil.CreateTestStock(t, db, 1, 1950, 20)

		sd, err := service.SetDemandModifier(1, 1950, 1.3)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 1.3, sd.DemandModifier)

		sd, err = service.SetDemandModifier(1, 1950, 0.9)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 0.9, sd.DemandModifier)

		var count int64
		testutil.AssertNoError(t, db.Model(&models.SupplyDemand{}).Count(&count).Error)
		if count != 1 {
			t.Errorf("expected a single row, got %d", count)
		}
	})

	t.Run("unknown stock", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := newTestMarketService(db)

		_, err := service.SetDemandModifier(9, 1950, 1.1)
		testutil.AssertAppError(t, err, "UNKNOWN_STOCK")
	})
}
