package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	// A single :memory: database exists per connection.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Short{},
		&types.ShortFile{},
		&types.Assignment{},
		&types.PayRate{},
		&types.Payment{},
		&types.AnalyzedShort{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func adminCtx() context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:  uuid.New(),
		IsAdmin: true,
	})
}

func userCtx(userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: userID,
	})
}

func seedUser(t *testing.T, db *gorm.DB, email string) *types.User {
	t.Helper()
	now := time.Now()
	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "x",
		FirstName: "Test",
		LastName:  "User",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedShort(t *testing.T, db *gorm.DB, status types.ShortStatus) *types.Short {
	t.Helper()
	now := time.Now()
	short := &types.Short{
		ID:        uuid.New(),
		Title:     "Test short",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(short).Error; err != nil {
		t.Fatalf("seed short: %v", err)
	}
	return short
}

func seedFile(t *testing.T, db *gorm.DB, shortID uuid.UUID, fileType types.FileType) {
	t.Helper()
	now := time.Now()
	row := &types.ShortFile{
		ID:         uuid.New(),
		ShortID:    shortID,
		FileType:   fileType,
		StorageKey: "shorts/" + shortID.String() + "/" + string(fileType),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed file: %v", err)
	}
}

func seedAssignment(t *testing.T, db *gorm.DB, shortID, userID uuid.UUID, role types.Role) *types.Assignment {
	t.Helper()
	now := time.Now()
	row := &types.Assignment{
		ID:        uuid.New(),
		ShortID:   shortID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return row
}

func seedRate(t *testing.T, db *gorm.DB, userID uuid.UUID, role types.Role, amount float64) *types.PayRate {
	t.Helper()
	now := time.Now()
	row := &types.PayRate{
		ID:        uuid.New(),
		UserID:    userID,
		Role:      role,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed rate: %v", err)
	}
	return row
}

func seedCorpusItem(t *testing.T, db *gorm.DB, views int64, transcript string) *types.AnalyzedShort {
	t.Helper()
	now := time.Now()
	row := &types.AnalyzedShort{
		ID:         uuid.New(),
		Title:      "Benchmark",
		Views:      views,
		Transcript: transcript,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed corpus item: %v", err)
	}
	return row
}

// newWorkflowFixture wires the workflow service against a fresh database
// with the real file-backed artifact store.
type workflowFixture struct {
	db       *gorm.DB
	workflow WorkflowService
	payments PaymentService
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)

	shortRepo := repos.NewShortRepo(db, log)
	shortFileRepo := repos.NewShortFileRepo(db, log)
	assignmentRepo := repos.NewAssignmentRepo(db, log)
	payRateRepo := repos.NewPayRateRepo(db, log)
	paymentRepo := repos.NewPaymentRepo(db, log)

	fileService := NewFileService(db, log, shortRepo, shortFileRepo, nil)
	paymentService := NewPaymentService(db, log, paymentRepo)
	workflowService := NewWorkflowService(db, log, shortRepo, assignmentRepo, payRateRepo, fileService, paymentService)

	return &workflowFixture{db: db, workflow: workflowService, payments: paymentService}
}
