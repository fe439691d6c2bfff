package controllers

import (
	"encoding/json"
	"fmt"
	"testing"

	"absensi_go/models"

	"github.com/gofiber/fiber/v2"
)

func TestDeleteDivisionFreesName(t *testing.T) {
	setupTestDB(t)

	app := fiber.New()
	dc := &DivisionController{}
	app.Post("/api/divisions", dc.CreateDivision)
	app.Delete("/api/divisions/:id", dc.DeleteDivision)

	body := `{"name":"Bahasa"}`

	status, data := doJSON(t, app, "POST", "/api/divisions", body)
	if status != fiber.StatusCreated {
		t.Fatalf("create: status %d, body %s", status, data)
	}
	var created struct {
		Division models.Division `json:"division"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	status, data = doJSON(t, app, "DELETE", fmt.Sprintf("/api/divisions/%d", created.Division.ID), "")
	if status != fiber.StatusOK {
		t.Fatalf("delete: status %d, body %s", status, data)
	}

	// The name must be usable again after the delete.
	status, data = doJSON(t, app, "POST", "/api/divisions", body)
	if status != fiber.StatusCreated {
		t.Fatalf("recreate: status %d, body %s", status, data)
	}
}
