package persistent

import (
	"context"
	"testing"

	"postfeed/pkg/models"
	"postfeed/services/post/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	owner := seedUser(t, db, "owner")
	ctx := context.Background()

	post := &entity.Post{Content: "hello", ImageURL: "http://img/1.png", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))
	assert.NotEmpty(t, post.ID)
	assert.False(t, post.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "http://img/1.png", got.ImageURL)
	assert.Equal(t, owner.ID, got.OwnerID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostRepository_UpdateContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	owner := seedUser(t, db, "owner")
	ctx := context.Background()

	post := &entity.Post{Content: "before", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))

	updated, err := repo.UpdateContent(ctx, post.ID, "after")
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Content)
	assert.Equal(t, post.ID, updated.ID)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	owner := seedUser(t, db, "owner")
	fan := seedUser(t, db, "fan")
	ctx := context.Background()

	post := &entity.Post{Content: "doomed", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))
	keep := &entity.Post{Content: "survivor", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, keep))

	comment := &models.Comment{Content: "bye", PostID: post.ID, OwnerID: fan.ID}
	require.NoError(t, db.Create(comment).Error)
	keptComment := &models.Comment{Content: "stay", PostID: keep.ID, OwnerID: fan.ID}
	require.NoError(t, db.Create(keptComment).Error)

	require.NoError(t, db.Create(&models.Like{PostID: &post.ID, LikedBy: fan.ID}).Error)
	require.NoError(t, db.Create(&models.Like{CommentID: &comment.ID, LikedBy: fan.ID}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: &keep.ID, LikedBy: fan.ID}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	var count int64
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	db.Model(&models.Like{}).Where("post_id = ? OR comment_id = ?", post.ID, comment.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	db.Model(&models.Like{}).Count(&count)
	assert.Equal(t, int64(1), count)

	db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err := repo.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	items, total, err := repo.ListFeed(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)
}

func TestPostRepository_DeleteMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)

	err := repo.Delete(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostRepository_GetFeedItem(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	owner := seedUser(t, db, "owner")
	ctx := context.Background()

	post := &entity.Post{Content: "one", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))

	item, err := repo.GetFeedItem(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", item.OwnerDetails.Username)
	assert.Empty(t, item.Comments)
}

func TestMapper_RoundTrip(t *testing.T) {
	assert.Nil(t, ToPostEntity(nil))
	assert.Nil(t, ToPostModel(nil))

	e := &entity.Post{ID: "id", Content: "c", ImageURL: "u", OwnerID: "o"}
	assert.Equal(t, e, ToPostEntity(ToPostModel(e)))
}
