package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/velotir/starship_registry/internal/hash"
	"github.com/velotir/starship_registry/internal/models"
)

const testData = `{
  "users": [
    { "name": "alice", "password": "secret123" }
  ],
  "ships": [
    {
      "affiliation": "Rebel Alliance",
      "category": "Starfighter",
      "crew": 1,
      "length": 13,
      "manufacturer": "Incom Corporation",
      "model": "T-65B X-wing",
      "roles": ["Space superiority"],
      "ship_class": "Starfighter"
    },
    {
      "affiliation": "Galactic Empire",
      "category": "Starfighter",
      "crew": 1,
      "length": 6,
      "manufacturer": "Sienar Fleet Systems",
      "model": "TIE/ln space superiority starfighter",
      "roles": ["Space superiority"],
      "ship_class": "Starfighter"
    }
  ]
}`

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Ship{}))
	return db
}

func writeTestData(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(testData), 0o644))
	return path
}

func TestRun(t *testing.T) {
	db := newTestDB(t)
	path := writeTestData(t)

	require.NoError(t, Run(db, path))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Name)
	// passwords land hashed, never in the clear
	assert.NotEqual(t, "secret123", users[0].Password)
	assert.True(t, hash.CheckPassword(users[0].Password, "secret123"))

	var ships []models.Ship
	require.NoError(t, db.Find(&ships).Error)
	require.Len(t, ships, 2)
	assert.Equal(t, []string{"Space superiority"}, ships[0].Roles)
}

func TestRun_SkipsPopulatedTables(t *testing.T) {
	db := newTestDB(t)
	path := writeTestData(t)

	require.NoError(t, db.Create(&models.User{Name: "existing", Password: "x"}).Error)

	require.NoError(t, Run(db, path))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(1), userCount)

	// ships table was empty, so it still gets seeded
	var shipCount int64
	require.NoError(t, db.Model(&models.Ship{}).Count(&shipCount).Error)
	assert.Equal(t, int64(2), shipCount)
}

func TestRun_Rerun_NoDuplicates(t *testing.T) {
	db := newTestDB(t)
	path := writeTestData(t)

	require.NoError(t, Run(db, path))
	require.NoError(t, Run(db, path))

	var shipCount int64
	require.NoError(t, db.Model(&models.Ship{}).Count(&shipCount).Error)
	assert.Equal(t, int64(2), shipCount)
}

func TestRun_MissingFile(t *testing.T) {
	db := newTestDB(t)
	assert.Error(t, Run(db, filepath.Join(t.TempDir(), "nope.json")))
}
