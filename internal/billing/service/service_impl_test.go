package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billingdomain "github.com/openmotel/motel/internal/billing/domain"
	billingrepo "github.com/openmotel/motel/internal/billing/repository"
	contractdomain "github.com/openmotel/motel/internal/contract/domain"
	contractrepo "github.com/openmotel/motel/internal/contract/repository"
	contractservice "github.com/openmotel/motel/internal/contract/service"
	"github.com/openmotel/motel/internal/ownerctx"
	paymentdomain "github.com/openmotel/motel/internal/payment/domain"
	readingdomain "github.com/openmotel/motel/internal/reading/domain"
	readingrepo "github.com/openmotel/motel/internal/reading/repository"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
	roomservice "github.com/openmotel/motel/internal/room/service"
	"github.com/openmotel/motel/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  billingdomain.Service
	ctx  context.Context

	ownerID    snowflake.ID
	roomID     snowflake.ID
	tenantID   snowflake.ID
	contractID snowflake.ID
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// File-backed so concurrent transactions contend on a real lock
	// instead of each seeing a private in-memory database.
	dsn := filepath.Join(t.TempDir(), "motel.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&roomdomain.Apartment{},
		&roomdomain.Room{},
		&roomdomain.Tenant{},
		&readingdomain.ElectricityReading{},
		&readingdomain.WaterReading{},
		&contractdomain.Contract{},
		&contractdomain.FixedCost{},
		&billingdomain.Bill{},
		&paymentdomain.Payment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupBilling(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	node := mustNode(t)
	log := zap.NewNop()

	guard := roomservice.NewGuard(roomservice.Params{DB: db, Log: log})
	contractSvc := contractservice.New(contractservice.Params{
		DB:    db,
		Log:   log,
		Guard: guard,
		Repo:  contractrepo.Provide(),
	})
	svc := New(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Guard:       guard,
		ContractSvc: contractSvc,
		ReadingRepo: readingrepo.Provide(),
		Repo:        billingrepo.Provide(),
	})

	f := &fixture{
		db:      db,
		node:    node,
		svc:     svc,
		ownerID: node.Generate(),
	}
	f.ctx = ownerctx.WithOwnerID(context.Background(), f.ownerID)
	f.seedTenancy(t)
	return f
}

func (f *fixture) seedTenancy(t *testing.T) {
	t.Helper()
	apartmentID := f.node.Generate()
	f.roomID = f.node.Generate()
	f.tenantID = f.node.Generate()
	f.contractID = f.node.Generate()

	if err := f.db.Create(&roomdomain.Apartment{
		ID:      apartmentID,
		OwnerID: f.ownerID,
		Name:    "blok-a",
	}).Error; err != nil {
		t.Fatalf("seed apartment: %v", err)
	}
	if err := f.db.Create(&roomdomain.Room{
		ID:          f.roomID,
		ApartmentID: apartmentID,
		RoomNumber:  "A-101",
	}).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	if err := f.db.Create(&roomdomain.Tenant{
		ID:   f.tenantID,
		Name: "budi",
	}).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}

	elecPrice := types.NewBigInt(3500)
	waterPrice := types.NewBigInt(15000)
	if err := f.db.Create(&contractdomain.Contract{
		ID:                   f.contractID,
		RoomID:               f.roomID,
		TenantID:             f.tenantID,
		RoomPrice:            types.NewBigInt(2500000),
		ElectricityUnitPrice: &elecPrice,
		WaterUnitPrice:       &waterPrice,
		StartDate:            time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}).Error; err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	for _, cost := range []struct {
		name  string
		price int64
	}{
		{"garbage", 30000},
		{"internet", 50000},
	} {
		if err := f.db.Create(&contractdomain.FixedCost{
			ID:         f.node.Generate(),
			ContractID: f.contractID,
			Name:       cost.name,
			Price:      types.NewBigInt(cost.price),
		}).Error; err != nil {
			t.Fatalf("seed fixed cost: %v", err)
		}
	}
}

func (f *fixture) insertReading(t *testing.T, utility readingdomain.Utility, value int64, at time.Time) {
	t.Helper()
	reading := readingdomain.MeterReading{
		ID:        f.node.Generate(),
		RoomID:    f.roomID,
		Value:     types.NewBigInt(value),
		ReadingAt: at,
		CreatedAt: time.Now().UTC(),
	}

	var err error
	switch utility {
	case readingdomain.UtilityElectricity:
		err = f.db.Create(&readingdomain.ElectricityReading{MeterReading: reading}).Error
	case readingdomain.UtilityWater:
		err = f.db.Create(&readingdomain.WaterReading{MeterReading: reading}).Error
	default:
		t.Fatalf("unknown utility %q", utility)
	}
	if err != nil {
		t.Fatalf("seed %s reading: %v", utility, err)
	}
}

func (f *fixture) seedMarchReadings(t *testing.T) {
	t.Helper()
	f.insertReading(t, readingdomain.UtilityElectricity, 1200, time.Date(2025, time.February, 27, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityElectricity, 1250, time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 340, time.Date(2025, time.February, 27, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 345, time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC))
}

func (f *fixture) countBills(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := f.db.Raw(`SELECT COUNT(*) FROM bills`).Scan(&count).Error; err != nil {
		t.Fatalf("count bills: %v", err)
	}
	return count
}

func TestGenerateBill(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	bill, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID: f.contractID,
		Period:     "2025-03",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if bill.TotalPrice.String() != "2830000" {
		t.Fatalf("total: got %s, want 2830000", bill.TotalPrice)
	}
	if bill.ElectricityBefore.String() != "1200" || bill.ElectricityAfter.String() != "1250" {
		t.Fatalf("electricity range: got %s..%s", bill.ElectricityBefore, bill.ElectricityAfter)
	}
	if bill.WaterBefore.String() != "340" || bill.WaterAfter.String() != "345" {
		t.Fatalf("water range: got %s..%s", bill.WaterBefore, bill.WaterAfter)
	}
	if bill.TotalPaid.Sign() != 0 {
		t.Fatalf("total paid: got %s, want 0", bill.TotalPaid)
	}
	if bill.UUID == "" {
		t.Fatal("uuid not assigned")
	}
	if bill.PeriodKey != "2025-03" {
		t.Fatalf("period key: got %s", bill.PeriodKey)
	}

	wantChargeDate := time.Date(2025, time.March, 31, 23, 59, 59, 999000000, time.UTC)
	if !bill.ChargeDate.Equal(wantChargeDate) {
		t.Fatalf("charge date: got %s, want period end", bill.ChargeDate)
	}
}

func TestGenerateBillIdempotent(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	req := billingdomain.GenerateRequest{ContractID: f.contractID, Period: "2025-03"}
	first, err := f.svc.Generate(f.ctx, req)
	if err != nil {
		t.Fatalf("generate first: %v", err)
	}

	// New readings after billing must not disturb the stored bill.
	f.insertReading(t, readingdomain.UtilityElectricity, 1300, time.Date(2025, time.March, 31, 20, 0, 0, 0, time.UTC))

	second, err := f.svc.Generate(f.ctx, req)
	if err != nil {
		t.Fatalf("generate second: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same bill, got %s vs %s", first.ID, second.ID)
	}
	if second.TotalPrice.Cmp(first.TotalPrice) != 0 {
		t.Fatalf("stored bill changed: %s vs %s", first.TotalPrice, second.TotalPrice)
	}
	if second.ElectricityAfter.String() != "1250" {
		t.Fatalf("stored reading changed: got %s", second.ElectricityAfter)
	}
	if count := f.countBills(t); count != 1 {
		t.Fatalf("expected 1 bill, got %d", count)
	}
}

func TestGenerateBillConcurrent(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	const callers = 8
	var wg sync.WaitGroup
	ids := make([]snowflake.ID, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bill, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
				ContractID: f.contractID,
				Period:     "2025-03",
			})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = bill.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	for i := 1; i < callers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("callers saw different bills: %s vs %s", ids[0], ids[i])
		}
	}
	if count := f.countBills(t); count != 1 {
		t.Fatalf("expected 1 bill, got %d", count)
	}
}

func TestGenerateBillExplicitAfterValues(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	elecAfter := types.NewBigInt(1260)
	waterAfter := types.NewBigInt(347)
	bill, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID:       f.contractID,
		Period:           "2025-03",
		ElectricityAfter: &elecAfter,
		WaterAfter:       &waterAfter,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if bill.ElectricityAfter.String() != "1260" {
		t.Fatalf("explicit electricity after ignored: got %s", bill.ElectricityAfter)
	}
	if bill.WaterAfter.String() != "347" {
		t.Fatalf("explicit water after ignored: got %s", bill.WaterAfter)
	}
	// 2500000 + 60*3500 + 7*15000 + 80000
	if bill.TotalPrice.String() != "2895000" {
		t.Fatalf("total: got %s, want 2895000", bill.TotalPrice)
	}
}

func TestGenerateBillCarriesForwardPriorBill(t *testing.T) {
	f := setupBilling(t)
	f.insertReading(t, readingdomain.UtilityElectricity, 1150, time.Date(2025, time.January, 28, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityElectricity, 1200, time.Date(2025, time.February, 26, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 335, time.Date(2025, time.January, 28, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 340, time.Date(2025, time.February, 26, 9, 0, 0, 0, time.UTC))

	february, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID: f.contractID,
		Period:     "2025-02",
	})
	if err != nil {
		t.Fatalf("generate february: %v", err)
	}
	if february.ElectricityAfter.String() != "1200" {
		t.Fatalf("february electricity after: got %s", february.ElectricityAfter)
	}

	// A late raw reading lands before the march window; the prior
	// bill's closing value must still win as march's baseline.
	f.insertReading(t, readingdomain.UtilityElectricity, 1180, time.Date(2025, time.February, 20, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityElectricity, 1250, time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 345, time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC))

	march, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID: f.contractID,
		Period:     "2025-03",
	})
	if err != nil {
		t.Fatalf("generate march: %v", err)
	}
	if march.ElectricityBefore.Cmp(february.ElectricityAfter) != 0 {
		t.Fatalf("march baseline: got %s, want carry-forward %s", march.ElectricityBefore, february.ElectricityAfter)
	}
	if march.WaterBefore.Cmp(february.WaterAfter) != 0 {
		t.Fatalf("march water baseline: got %s, want %s", march.WaterBefore, february.WaterAfter)
	}
}

func TestGenerateBillContractStartFallback(t *testing.T) {
	f := setupBilling(t)

	elecStart := types.NewBigInt(150)
	waterStart := types.NewBigInt(40)
	err := f.db.Exec(
		`UPDATE contracts SET electricity_start_value = ?, water_start_value = ? WHERE id = ?`,
		elecStart, waterStart, f.contractID,
	).Error
	if err != nil {
		t.Fatalf("update contract: %v", err)
	}

	// First month of the lease: no prior bill and no earlier readings.
	f.insertReading(t, readingdomain.UtilityElectricity, 200, time.Date(2025, time.January, 30, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 45, time.Date(2025, time.January, 30, 9, 0, 0, 0, time.UTC))

	bill, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID: f.contractID,
		Period:     "2025-01",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if bill.ElectricityBefore.String() != "150" {
		t.Fatalf("electricity baseline: got %s, want contract start value", bill.ElectricityBefore)
	}
	if bill.WaterBefore.String() != "40" {
		t.Fatalf("water baseline: got %s, want contract start value", bill.WaterBefore)
	}
	// 2500000 + 50*3500 + 5*15000 + 80000
	if bill.TotalPrice.String() != "2830000" {
		t.Fatalf("total: got %s", bill.TotalPrice)
	}
}

func TestGenerateBillMissingReading(t *testing.T) {
	f := setupBilling(t)
	// Water has no readings at all and the contract carries no start
	// values, so the period cannot be priced.
	f.insertReading(t, readingdomain.UtilityElectricity, 1200, time.Date(2025, time.February, 27, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityElectricity, 1250, time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC))

	_, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID: f.contractID,
		Period:     "2025-03",
	})
	if !errors.Is(err, billingdomain.ErrMissingWaterReading) {
		t.Fatalf("expected missing water reading, got %v", err)
	}
	if count := f.countBills(t); count != 0 {
		t.Fatalf("rejected generation persisted %d bills", count)
	}
}

func TestGenerateBillNonMonotonic(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	after := types.NewBigInt(1100)
	_, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID:       f.contractID,
		Period:           "2025-03",
		ElectricityAfter: &after,
	})
	if !errors.Is(err, billingdomain.ErrNonMonotonicElectricity) {
		t.Fatalf("expected non-monotonic electricity, got %v", err)
	}
	if count := f.countBills(t); count != 0 {
		t.Fatalf("rejected generation persisted %d bills", count)
	}
}

func TestGenerateBillInvalidPeriod(t *testing.T) {
	f := setupBilling(t)

	_, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID: f.contractID,
		Period:     "2025-3",
	})
	if !errors.Is(err, billingdomain.ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}

func TestGenerateBillForbiddenOwner(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	stranger := ownerctx.WithOwnerID(context.Background(), f.node.Generate())
	_, err := f.svc.Generate(stranger, billingdomain.GenerateRequest{
		ContractID: f.contractID,
		Period:     "2025-03",
	})
	if !errors.Is(err, roomdomain.ErrRoomForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestPreviewDoesNotPersist(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	statement, err := f.svc.Preview(f.ctx, billingdomain.PreviewRequest{
		RoomID: f.roomID,
		Period: "2025-03",
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if statement.Total.String() != "2830000" {
		t.Fatalf("preview total: got %s", statement.Total)
	}
	if statement.Electricity.Used.String() != "50" {
		t.Fatalf("preview electricity used: got %s", statement.Electricity.Used)
	}
	if count := f.countBills(t); count != 0 {
		t.Fatalf("preview persisted %d bills", count)
	}
}

func TestPreviewNoActiveContract(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	end := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	if err := f.db.Exec(`UPDATE contracts SET end_date = ? WHERE id = ?`, end, f.contractID).Error; err != nil {
		t.Fatalf("update contract: %v", err)
	}

	_, err := f.svc.Preview(f.ctx, billingdomain.PreviewRequest{
		RoomID: f.roomID,
		Period: "2025-06",
	})
	if !errors.Is(err, contractdomain.ErrNoActiveContract) {
		t.Fatalf("expected no active contract, got %v", err)
	}
}

func TestGetBillByID(t *testing.T) {
	f := setupBilling(t)
	f.seedMarchReadings(t)

	created, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
		ContractID: f.contractID,
		Period:     "2025-03",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	loaded, err := f.svc.GetByID(f.ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.TotalPrice.Cmp(created.TotalPrice) != 0 {
		t.Fatalf("loaded total: got %s", loaded.TotalPrice)
	}

	if _, err := f.svc.GetByID(f.ctx, f.node.Generate()); !errors.Is(err, billingdomain.ErrBillNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	stranger := ownerctx.WithOwnerID(context.Background(), f.node.Generate())
	if _, err := f.svc.GetByID(stranger, created.ID); !errors.Is(err, roomdomain.ErrRoomForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListForContract(t *testing.T) {
	f := setupBilling(t)
	f.insertReading(t, readingdomain.UtilityElectricity, 1150, time.Date(2025, time.January, 28, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityElectricity, 1200, time.Date(2025, time.February, 26, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityElectricity, 1250, time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 335, time.Date(2025, time.January, 28, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 340, time.Date(2025, time.February, 26, 9, 0, 0, 0, time.UTC))
	f.insertReading(t, readingdomain.UtilityWater, 345, time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC))

	for _, period := range []string{"2025-02", "2025-03"} {
		if _, err := f.svc.Generate(f.ctx, billingdomain.GenerateRequest{
			ContractID: f.contractID,
			Period:     period,
		}); err != nil {
			t.Fatalf("generate %s: %v", period, err)
		}
	}

	bills, err := f.svc.ListForContract(f.ctx, f.contractID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("expected 2 bills, got %d", len(bills))
	}
	if bills[0].PeriodKey != "2025-03" || bills[1].PeriodKey != "2025-02" {
		t.Fatalf("unexpected order: %s, %s", bills[0].PeriodKey, bills[1].PeriodKey)
	}
}
