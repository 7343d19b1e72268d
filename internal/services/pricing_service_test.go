package services

import (
	"testing"

	"bourse/internal/testutil"
)

func TestAdjustedPrice(t *testing.T) {
	t.Run("penny stock trades at base price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		stock := testutil.CreateTestStock(t, db, 1, 1950, 7.5)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 7.5, price)

		// No adjustment is cached below the floor.
		testutil.AssertNoError(t, db.First(stock, stock.ID).Error)
		if stock.AdjustedPrice != nil {
			t.Errorf("expected no cached adjustment, got %v", *stock.AdjustedPrice)
		}
	})

	t.Run("selling pressure depresses the price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStock(t, db, 1, 1950, 20)
		player := testutil.CreateTestPlayer(t, db, 1000)
		testutil.CreateTestSale(t, db, player.ID, 1, 100, 1950)

		// ratio 100/1000 = 0.1, multiplier 0.99, 20 * 0.99 = 19.8
		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 19.8, price)
	})

	t.Run("selling multiplier bottoms out at half", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStock(t, db, 1, 1950, 18)
		player := testutil.CreateTestPlayer(t, db, 1000)
		testutil.CreateTestSale(t, db, player.ID, 1, 100000, 1950)

		// multiplier clamps at 0.5 -> 9, above the lower bound of 8.
		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 9, price)
	})

	t.Run("sales from other years do not count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStock(t, db, 1, 1950, 20)
		player := testutil.CreateTestPlayer(t, db, 1000)
		testutil.CreateTestSale(t, db, player.ID, 1, 500, 1949)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 20, price)
	})

	t.Run("demand modifier scales the price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStock(t, db, 1, 1950, 20)
		testutil.CreateTestDemand(t, db, 1, 1950, 1.2)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 24, price)
	})

	t.Run("demand modifier ignored when disabled", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, false)

		testutil.CreateTestStock(t, db, 1, 1950, 20)
		testutil.CreateTestDemand(t, db, 1, 1950, 1.2)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 20, price)
	})

	t.Run("global market event applies to every category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStockFull(t, db, 1, 1929, 20, "science", 1000)
		testutil.CreateTestMarketEvent(t, db, 1929, "", 0.7, 1.0)

		price, err := service.AdjustedPrice(1, 1929)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 14, price)
	})

	t.Run("sector event matches category case-insensitively", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStockFull(t, db, 1, 1950, 20, "science", 1000)
		testutil.CreateTestMarketEvent(t, db, 1950, "Science", 1.3, 1.0)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 26, price)
	})

	t.Run("sector event for another category is ignored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStockFull(t, db, 1, 1950, 20, "science", 1000)
		testutil.CreateTestMarketEvent(t, db, 1950, "music", 1.3, 1.0)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 20, price)
	})

	t.Run("multiple events compose multiplicatively", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStockFull(t, db, 1, 1950, 20, "science", 1000)
		testutil.CreateTestMarketEvent(t, db, 1950, "", 0.9, 1.0)
		testutil.CreateTestMarketEvent(t, db, 1950, "science", 1.2, 1.0)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 20*0.9*1.2, price)
	})

	t.Run("price cannot rise more than ten above base", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStock(t, db, 1, 1950, 20)
		testutil.CreateTestDemand(t, db, 1, 1950, 2.5)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 30, price)
	})

	t.Run("price cannot fall more than ten below base", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStock(t, db, 1, 1950, 30)
		testutil.CreateTestDemand(t, db, 1, 1950, 0.1)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 20, price)
	})

	t.Run("missing market cap defaults to one thousand", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStockFull(t, db, 1, 1950, 20, "business", 0)
		player := testutil.CreateTestPlayer(t, db, 1000)
		testutil.CreateTestSale(t, db, player.ID, 1, 100, 1950)

		price, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)
		testutil.AssertClose(t, 19.8, price)
	})

	t.Run("adjusted price is persisted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		stock := testutil.CreateTestStock(t, db, 1, 1950, 20)
		testutil.CreateTestDemand(t, db, 1, 1950, 1.1)

		_, err := service.AdjustedPrice(1, 1950)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, db.First(stock, stock.ID).Error)
		if stock.AdjustedPrice == nil {
			t.Fatal("expected adjusted price to be persisted")
		}
		testutil.AssertClose(t, 22, *stock.AdjustedPrice)
	})

	t.Run("unknown stock", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		_, err := service.AdjustedPrice(999, 1950)
		testutil.AssertAppError(t, err, "UNKNOWN_STOCK")
	})
}

func TestActivePrice(t *testing.T) {
	t.Run("falls back to base price without an adjustment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		stock := testutil.CreateTestStock(t, db, 1, 1950, 20)
		testutil.AssertClose(t, 20, service.ActivePrice(stock))
	})

	t.Run("prefers the cached adjusted price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		stock := testutil.CreateTestStock(t, db, 1, 1950, 20)
		adjusted := 18.5
		stock.AdjustedPrice = &adjusted

		testutil.AssertClose(t, 18.5, service.ActivePrice(stock))
	})
}

func TestRepriceYear(t *testing.T) {
	t.Run("adjusts every listing of the year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		service := NewPricingService(db, true)

		testutil.CreateTestStock(t, db, 1, 1950, 20)
		testutil.CreateTestStock(t, db, 2, 1950, 12)
		testutil.CreateTestStock(t, db, 3, 1951, 15)

		stocks, err := service.RepriceYear(1950)
		testutil.AssertNoError(t, err)

		if len(stocks) != 2 {
			t.Fatalf("expected 2 listings, got %d", len(stocks))
		}
		for _, stock := range stocks {
			if stock.AdjustedPrice == nil {
				t.Errorf("stock %d missing adjusted price", stock.StockID)
			}
		}
	})
}
