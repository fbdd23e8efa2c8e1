package dao

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB is nil when the suite runs with -short or without a docker daemon.
var testDB *gorm.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, skipping dao tests: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=qr",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=qr_admin",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("pool.RunWithOptions: %v", err)
	}
	_ = resource.Expire(120)

	dsn := fmt.Sprintf("postgres://qr:secret@%s/qr_admin?sslmode=disable", resource.GetHostPort("5432/tcp"))
	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err = sqlDB.Ping(); err != nil {
			return err
		}
		testDB = db

		return nil
	})
	if err == nil {
		err = InitTables(testDB)
	}
	if err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("postgres not ready: %v", err)
	}

	code := m.Run()
	if err = pool.Purge(resource); err != nil {
		log.Printf("pool.Purge: %v", err)
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres is not available")
	}

	return testDB
}

func insertQr(t *testing.T, db *gorm.DB, token string) Qr {
	t.Helper()

	qr, err := NewQrDAO(db).Insert(context.Background(), Qr{Token: token, Status: "active"})
	require.NoError(t, err)

	return qr
}

func TestQrDAO_TokenIsUnique(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	insertQr(t, db, "UNIQUE-TOKEN-1")

	_, err := NewQrDAO(db).Insert(ctx, Qr{Token: "UNIQUE-TOKEN-1", Status: "active"})
	assert.ErrorIs(t, err, ErrQrTokenExists)

	exists, err := NewQrDAO(db).TokenExists(ctx, "UNIQUE-TOKEN-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStockDAO_ApplySerializesConcurrentMovements(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	qr := insertQr(t, db, "STOCK-TOKEN-1")
	item, err := NewItemDAO(db).Insert(ctx, Item{QrID: qr.ID, Name: "Teddy", BalanceStock: decimal.NewFromInt(5)}, &StockTransaction{Type: "in", Quantity: decimal.NewFromInt(5)})
	require.NoError(t, err)

	stock := NewStockDAO(db)
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		applied      int
		insufficient int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := stock.Apply(ctx, StockTransaction{ItemID: item.ID, QrID: qr.ID, Type: "out", Quantity: decimal.NewFromInt(1)}, decimal.NewFromInt(-1))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				applied++
			case errors.Is(err, ErrInsufficientStock):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, applied)
	assert.Equal(t, 3, insufficient)

	got, err := NewItemDAO(db).FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.BalanceStock.IsZero())

	_, total, err := stock.List(ctx, qr.ID, item.ID, "", 0, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
}

func TestPinDAO_ConsumeOnce(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	qr := insertQr(t, db, "PIN-TOKEN-1")
	pins := NewPinDAO(db)
	require.NoError(t, pins.InsertAll(ctx, []QrPin{{QrID: qr.ID, PinNumber: "123456"}, {QrID: qr.ID, PinNumber: "654321"}}))

	err := pins.InsertAll(ctx, []QrPin{{QrID: qr.ID, PinNumber: "999999"}, {QrID: qr.ID, PinNumber: "123456"}})
	assert.ErrorIs(t, err, ErrPinExists)

	existing, err := pins.ExistingNumbers(ctx, qr.ID, []string{"123456", "999999"})
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, existing)

	ok, err := pins.Consume(ctx, qr.ID, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pins.Consume(ctx, qr.ID, "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	used := true
	list, total, err := pins.List(ctx, qr.ID, "", &used, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "123456", list[0].PinNumber)
}

func TestMigrateLegacyWishStatuses(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	qr := insertQr(t, db, "WISH-TOKEN-1")
	wishes := NewWishDAO(db)
	legacy, err := wishes.Insert(ctx, Wish{QrID: qr.ID, Message: "Have fun", Status: "seen"})
	require.NoError(t, err)

	require.NoError(t, MigrateLegacyWishStatuses(db))

	got, err := wishes.FindByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", got.Status)
}

func TestStockDAO_ApplyWithPinIsAtomic(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()

	qr := insertQr(t, db, "SPIN-TOKEN-1")
	item, err := NewItemDAO(db).Insert(ctx, Item{QrID: qr.ID, Name: "Teddy", BalanceStock: decimal.NewFromInt(1)}, nil)
	require.NoError(t, err)
	pins := NewPinDAO(db)
	require.NoError(t, pins.InsertAll(ctx, []QrPin{{QrID: qr.ID, PinNumber: "111111"}, {QrID: qr.ID, PinNumber: "222222"}}))

	stock := NewStockDAO(db)
	out := func() StockTransaction {
		return StockTransaction{ItemID: item.ID, QrID: qr.ID, Type: "out", Quantity: decimal.NewFromInt(1)}
	}

	// Unknown pin: the movement is rolled back.
	_, err = stock.ApplyWithPin(ctx, out(), decimal.NewFromInt(-1), "999999")
	assert.ErrorIs(t, err, ErrPinUnavailable)
	got, err := NewItemDAO(db).FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", got.BalanceStock.String())

	_, err = stock.ApplyWithPin(ctx, out(), decimal.NewFromInt(-1), "111111")
	require.NoError(t, err)

	// No stock left: the pin stays unused.
	_, err = stock.ApplyWithPin(ctx, out(), decimal.NewFromInt(-1), "222222")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	ok, err := pins.Consume(ctx, qr.ID, "222222")
	require.NoError(t, err)
	assert.True(t, ok)

	_, total, err := stock.List(ctx, qr.ID, item.ID, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
