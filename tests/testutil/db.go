package testutil

import (
	"testing"

	"github.com/kendall-kelly/estate-inquiries-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database. The pool is pinned
// to one connection because every new :memory: connection is a fresh,
// empty database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate test database")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// SeedUser inserts a user with the given role
func SeedUser(t *testing.T, db *gorm.DB, auth0ID, name string, role models.Role) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: auth0ID,
		Name:    name,
		Email:   auth0ID + "@example.com",
		Role:    role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// SeedAgent inserts a staff profile, linked to the user when one is given
func SeedAgent(t *testing.T, db *gorm.DB, name string, linked *models.User) models.Agent {
	t.Helper()

	agent := models.Agent{
		Name:  name,
		Title: "Senior Agent",
		Phone: "+1 555 0100",
	}
	if linked != nil {
		id := linked.ID
		agent.LinkedUserID = &id
	}
	require.NoError(t, db.Create(&agent).Error)
	return agent
}

// SeedProperty inserts a listing handled by the given agent (may be nil)
func SeedProperty(t *testing.T, db *gorm.DB, title string, agent *models.Agent) models.Property {
	t.Helper()

	price := 450000.0
	bedrooms, bathrooms := 3, 2
	area := 1450.5
	imageKey := "properties/" + title + ".png"
	property := models.Property{
		Title:     title,
		Address:   "12 Harbour Street",
		Price:     &price,
		Type:      models.PropertyTypeSale,
		Bedrooms:  &bedrooms,
		Bathrooms: &bathrooms,
		AreaSqFt:  &area,
		ImageKey:  &imageKey,
	}
	if agent != nil {
		id := agent.ID
		property.AgentID = &id
	}
	require.NoError(t, db.Create(&property).Error)
	return property
}
