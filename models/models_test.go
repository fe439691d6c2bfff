package models

import (
	"encoding/json"
	"testing"
)

func TestRoleValid(t *testing.T) {
	valid := []Role{RoleAdmin, RoleStaff, RoleSantri}
	for _, r := range valid {
		if !r.Valid() {
			t.Errorf("expected role %q to be valid", r)
		}
	}

	invalid := []Role{"", "superadmin", "Admin", "STAFF"}
	for _, r := range invalid {
		if r.Valid() {
			t.Errorf("expected role %q to be invalid", r)
		}
	}
}

func TestSessionStatusValid(t *testing.T) {
	valid := []SessionStatus{SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected status %q to be valid", s)
		}
	}

	invalid := []SessionStatus{"", "done", "Scheduled"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("expected status %q to be invalid", s)
		}
	}
}

func TestAttendanceStatusValid(t *testing.T) {
	valid := []AttendanceStatus{AttendancePresent, AttendanceLate, AttendanceAbsent, AttendanceExcused}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected status %q to be valid", s)
		}
	}

	invalid := []AttendanceStatus{"", "sick", "PRESENT"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("expected status %q to be invalid", s)
		}
	}
}

func TestJSONValue(t *testing.T) {
	payload := JSON(`{"updated":3}`)

	v, err := payload.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != `{"updated":3}` {
		t.Fatalf("unexpected driver value: %v", v)
	}

	var empty JSON
	v, err = empty.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("expected nil driver value for empty JSON, got %v", v)
	}
}

func TestJSONScan(t *testing.T) {
	var restored JSON
	if err := restored.Scan([]byte(`{"updated":3}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(restored, &decoded); err != nil {
		t.Fatalf("scanned value is not valid JSON: %v", err)
	}
	if decoded["updated"] != 3 {
		t.Fatalf("expected updated=3, got %v", decoded)
	}
}

func TestJSONScanNil(t *testing.T) {
	var j JSON
	if err := j.Scan(nil); err != nil {
		t.Fatalf("unexpected error scanning nil: %v", err)
	}
	if j != nil {
		t.Fatalf("expected nil JSON, got %v", j)
	}
}

func TestUserPasswordNotSerialized(t *testing.T) {
	user := User{
		Name:     "Ahmad",
		Email:    "ahmad@example.com",
		Password: "hashed-secret",
		Role:     RoleSantri,
	}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := decoded["password"]; ok {
		t.Fatal("password must not appear in serialized user")
	}
}
