package database

import (
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := openTestDB(t)

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.Post{}))
	assert.True(t, db.Migrator().HasColumn(&models.Post{}, "slug"))
}

func TestSchema_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	user := models.User{
		Email:          "ada@example.com",
		HashedPassword: "hash",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Role:           models.RoleUser,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&user).Error)

	now := time.Now()
	post := models.Post{
		UserID:      user.ID,
		Title:       "Hello",
		Content:     "World",
		Slug:        "hello",
		Status:      models.PostStatusPublished,
		PublishedAt: &now,
	}
	require.NoError(t, db.Create(&post).Error)

	var loaded models.Post
	require.NoError(t, db.Preload("User").First(&loaded, post.ID).Error)
	assert.Equal(t, "hello", loaded.Slug)
	assert.Equal(t, "ada@example.com", loaded.User.Email)
}

func TestSchema_UniqueConstraints(t *testing.T) {
	db := openTestDB(t)

	user := models.User{
		Email:          "dup@example.com",
		HashedPassword: "hash",
		FirstName:      "Du",
		LastName:       "Plicate",
		Role:           models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)

	dup := models.User{
		Email:          "dup@example.com",
		HashedPassword: "hash",
		FirstName:      "Other",
		LastName:       "Person",
		Role:           models.RoleUser,
	}
	assert.Error(t, db.Create(&dup).Error)
}

func TestSchema_SoftDelete(t *testing.T) {
	db := openTestDB(t)

	user := models.User{
		Email:          "gone@example.com",
		HashedPassword: "hash",
		FirstName:      "Going",
		LastName:       "Gone",
		Role:           models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Delete(&user).Error)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// Row survives behind the soft delete.
	require.NoError(t, db.Unscoped().Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
