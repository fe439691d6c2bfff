package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleSantri Role = "santri"
)

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleSantri:
		return true
	default:
		return false
	}
}

// SessionStatus represents the lifecycle state of a session.
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "scheduled"
	SessionInProgress SessionStatus = "in-progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionInProgress, SessionCompleted, SessionCancelled:
		return true
	default:
		return false
	}
}

// AttendanceStatus represents the status of a single attendance record.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceLate, AttendanceAbsent, AttendanceExcused:
		return true
	default:
		return false
	}
}

// User model
type User struct {
	BaseModel
	Name       string `json:"name" gorm:"size:255;not null"`
	Email      string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password   string `json:"-" gorm:"size:255;not null"`
	Role       Role   `json:"role" gorm:"size:50;not null;default:'santri'"` // admin, staff, santri
	BatchID    *uint  `json:"batch_id" gorm:"index"`
	DivisionID *uint  `json:"division_id" gorm:"index"`
	Avatar     string `json:"avatar" gorm:"size:500"`
	Active     bool   `json:"active" gorm:"default:true"`

	// Relationships
	Batch    *Batch    `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
	Division *Division `json:"division,omitempty" gorm:"foreignKey:DivisionID"`
}

// Batch model - a cohort of santri grouped by enrollment year
type Batch struct {
	BaseModel
	Name   string `json:"name" gorm:"size:100;not null;uniqueIndex:idx_batch_name_year"`
	Year   int    `json:"year" gorm:"not null;uniqueIndex:idx_batch_name_year"`
	Active bool   `json:"active" gorm:"default:true"`

	// Relationships
	Users    []User    `json:"users,omitempty" gorm:"foreignKey:BatchID"`
	Sessions []Session `json:"sessions,omitempty" gorm:"foreignKey:BatchID"`
}

// Division model - organizational sub-grouping independent of batch
type Division struct {
	BaseModel
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`

	// Relationships
	Users []User `json:"users,omitempty" gorm:"foreignKey:DivisionID"`
}

// SessionType model - a recurring kind of session (kajian subuh, tahfidz, ...)
type SessionType struct {
	BaseModel
	Name         string `json:"name" gorm:"size:100;not null"`
	Description  string `json:"description" gorm:"type:text"`
	StartTime    string `json:"start_time" gorm:"size:5"` // HH:MM
	EndTime      string `json:"end_time" gorm:"size:5"`   // HH:MM
	DisplayOrder int    `json:"display_order" gorm:"default:1"`
	Active       bool   `json:"active" gorm:"default:true"`
}

// Session model - an occurrence of a SessionType for a Batch on a given date
type Session struct {
	BaseModel
	Date          time.Time     `json:"date" gorm:"type:date;not null;uniqueIndex:idx_session_date_type_batch"`
	StartTime     string        `json:"start_time" gorm:"size:5"`
	EndTime       string        `json:"end_time" gorm:"size:5"`
	SessionTypeID uint          `json:"session_type_id" gorm:"not null;uniqueIndex:idx_session_date_type_batch"`
	BatchID       uint          `json:"batch_id" gorm:"not null;uniqueIndex:idx_session_date_type_batch"`
	DivisionID    *uint         `json:"division_id"`
	Status        SessionStatus `json:"status" gorm:"size:50;not null;default:'scheduled'"` // scheduled, in-progress, completed, cancelled
	Notes         string        `json:"notes" gorm:"type:text"`

	// Relationships
	SessionType SessionType  `json:"session_type,omitempty" gorm:"foreignKey:SessionTypeID"`
	Batch       Batch        `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
	Division    *Division    `json:"division,omitempty" gorm:"foreignKey:DivisionID"`
	Attendances []Attendance `json:"attendances,omitempty" gorm:"foreignKey:SessionID"`
}

// Attendance model, uniquely keyed by (session, user)
type Attendance struct {
	BaseModel
	SessionID   uint             `json:"session_id" gorm:"not null;uniqueIndex:idx_attendance_session_user"`
	UserID      uint             `json:"user_id" gorm:"not null;uniqueIndex:idx_attendance_session_user"`
	Status      AttendanceStatus `json:"status" gorm:"size:50;not null;default:'absent'"` // present, late, absent, excused
	CheckInTime *time.Time       `json:"check_in_time"`
	Notes       string           `json:"notes" gorm:"type:text"`
	VerifiedBy  *uint            `json:"verified_by"`
	VerifiedAt  *time.Time       `json:"verified_at"`

	// Relationships
	Session  Session `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	User     User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Verifier *User   `json:"verifier,omitempty" gorm:"foreignKey:VerifiedBy"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
