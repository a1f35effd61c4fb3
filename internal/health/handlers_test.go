package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"autotelex-sync/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestHealthJSON(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Listing{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	h := &Handlers{DB: db, Rdb: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	app := fiber.New()
	app.Get("/health/json", h.JSON)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result["status"])
	deps := result["dependencies"].(map[string]interface{})
	assert.Equal(t, "up", deps["database"])
	assert.Equal(t, "up", deps["redis"])
}

func TestHealthJSONWithoutRedis(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	h := &Handlers{DB: db}
	app := fiber.New()
	app.Get("/health/json", h.JSON)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	deps := result["dependencies"].(map[string]interface{})
	assert.Equal(t, "disabled", deps["redis"])
	assert.Equal(t, "up", deps["database"])
}
