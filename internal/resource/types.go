package resource

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the appointment status wire value.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCancelled}

func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Source tags the channel an appointment was created through.
type Source string

const SourceWeb Source = "web"

type Salon struct {
	ID          int      `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	IsPublished bool     `json:"isPublished"`
	Services    []string `json:"services"`
	Employees   []string `json:"employees"`
}

type Service struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Duration int             `json:"duration"`
	Price    decimal.Decimal `json:"price"`
	Salon    string          `json:"salon,omitempty"`
}

type Employee struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Salon string `json:"salon,omitempty"`
}

// Appointment as returned by the backend, with its relations embedded as
// summaries.
type Appointment struct {
	ID          int              `json:"id"`
	ClientName  string           `json:"clientName"`
	ClientPhone string           `json:"clientPhone"`
	ClientEmail string           `json:"clientEmail,omitempty"`
	Salon       SalonSummary     `json:"salon"`
	Service     ServiceSummary   `json:"service"`
	Employee    *EmployeeSummary `json:"employee"`
	StartAt     string           `json:"startAt"`
	Status      Status           `json:"status"`
	Source      string           `json:"source"`
	Notes       string           `json:"notes,omitempty"`
}

type SalonSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ServiceSummary struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Duration int             `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

type EmployeeSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// LocalLayout is the salon-local timestamp format sent on creation.
const LocalLayout = "2006-01-02T15:04:05"

// StartTime parses StartAt. Offsets sent back by the backend are dropped:
// the wall clock is already salon-local.
func (a Appointment) StartTime() (time.Time, bool) {
	s := a.StartAt
	if len(s) >= len(LocalLayout) {
		s = s[:len(LocalLayout)]
	}
	t, err := time.Parse(LocalLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AppointmentPayload is the creation body. Relations are reference strings.
type AppointmentPayload struct {
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`
	ClientEmail string `json:"clientEmail,omitempty"`
	Salon       string `json:"salon"`
	Service     string `json:"service"`
	Employee    string `json:"employee,omitempty"`
	StartAt     string `json:"startAt"`
	Source      Source `json:"source"`
	Notes       string `json:"notes,omitempty"`
}

// AppointmentFilters are the dashboard listing filters. Empty fields are
// not sent.
type AppointmentFilters struct {
	Status      string
	StartAfter  string
	StartBefore string
}

func (f AppointmentFilters) Normalize() AppointmentFilters {
	return AppointmentFilters{
		Status:      strings.TrimSpace(f.Status),
		StartAfter:  strings.TrimSpace(f.StartAfter),
		StartBefore: strings.TrimSpace(f.StartBefore),
	}
}
