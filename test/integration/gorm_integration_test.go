package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-recall-be/internal/entity"
	"ai-recall-be/internal/model"
	"ai-recall-be/internal/repository/unitofwork"
	"ai-recall-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := database.EnsureVectorExtension(gormDB); err != nil {
		t.Fatalf("Failed to enable pgvector: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Connection{},
		&model.ContentItem{},
		&model.SyncState{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ChatCitation{},
	); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ContentItemRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	ctx := context.Background()
	userId := uuid.New()
	user := &entity.User{
		Id:       userId,
		Email:    "test-integration-" + uuid.New().String() + "@example.com",
		FullName: "Integration Test User",
	}
	err = uow.UserRepository().Create(ctx, user)
	assert.NoError(t, err)

	t.Run("Upsert And Vector Search", func(t *testing.T) {
		item := &entity.ContentItem{
			Id:             uuid.New(),
			UserId:         userId,
			SourceTag:      "twitter",
			StableId:       "tw-1",
			Title:          "a tweet about gardening",
			Document:       "Tweet by @gardener: tomatoes like full sun",
			URL:            "https://twitter.com/i/web/status/1",
			Author:         "gardener",
			RecencyMarker:  time.Now().UnixMilli(),
			EmbeddingValue: []float32{1, 0, 0, 0},
			StoredAt:       time.Now(),
		}
		err := uow.ContentItemRepository().Upsert(ctx, item)
		assert.NoError(t, err)

		// Upsert again with a fresh embedding; must replace, not duplicate.
		item.EmbeddingValue = []float32{0, 1, 0, 0}
		err = uow.ContentItemRepository().Upsert(ctx, item)
		assert.NoError(t, err)

		ids, err := uow.ContentItemRepository().StableIds(ctx, userId, "twitter")
		assert.NoError(t, err)
		assert.Len(t, ids, 1)

		hits, err := uow.ContentItemRepository().SearchSimilar(ctx, []float32{0, 1, 0, 0}, 5, userId, "", 0)
		assert.NoError(t, err)
		if assert.NotEmpty(t, hits) {
			assert.Equal(t, "tw-1", hits[0].Item.StableId)
			assert.InDelta(t, 1.0, hits[0].Similarity, 0.01)
		}
	})

	t.Run("Sync State Round Trip", func(t *testing.T) {
		st := &entity.SyncState{
			Id:              uuid.New(),
			UserId:          userId,
			SourceTag:       "twitter",
			LastDeltaCursor: time.Now().UnixMilli(),
			SyncCounter:     1,
			CreatedAt:       time.Now(),
		}
		err := uow.SyncStateRepository().Save(ctx, st)
		assert.NoError(t, err)

		loaded, err := uow.SyncStateRepository().Get(ctx, userId, "twitter")
		assert.NoError(t, err)
		if assert.NotNil(t, loaded) {
			assert.Equal(t, st.LastDeltaCursor, loaded.LastDeltaCursor)
			assert.Equal(t, 1, loaded.SyncCounter)
		}

		err = uow.SyncStateRepository().Delete(ctx, userId, "twitter")
		assert.NoError(t, err)
	})

	// Cleanup
	_, err = uow.ContentItemRepository().DeleteByStableIds(ctx, userId, "twitter", []string{"tw-1"})
	assert.NoError(t, err)
}
