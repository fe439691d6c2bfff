package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"absensi_go/database"
	"absensi_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the package database handle for a throwaway sqlite file
// with the full schema migrated. The previous handle is restored on cleanup.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Batch{},
		&models.Division{},
		&models.SessionType{},
		&models.Session{},
		&models.Attendance{},
		&models.ActivityLog{},
	); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, data
}

func TestDeleteBatchFreesNameYear(t *testing.T) {
	setupTestDB(t)

	app := fiber.New()
	bc := &BatchController{}
	app.Post("/api/batches", bc.CreateBatch)
	app.Delete("/api/batches/:id", bc.DeleteBatch)

	body := `{"name":"Angkatan 1","year":2025}`

	status, data := doJSON(t, app, "POST", "/api/batches", body)
	if status != fiber.StatusCreated {
		t.Fatalf("create: status %d, body %s", status, data)
	}
	var created struct {
		Batch models.Batch `json:"batch"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	status, data = doJSON(t, app, "DELETE", fmt.Sprintf("/api/batches/%d", created.Batch.ID), "")
	if status != fiber.StatusOK {
		t.Fatalf("delete: status %d, body %s", status, data)
	}

	// The (name, year) pair must be usable again after the delete.
	status, data = doJSON(t, app, "POST", "/api/batches", body)
	if status != fiber.StatusCreated {
		t.Fatalf("recreate: status %d, body %s", status, data)
	}
}
