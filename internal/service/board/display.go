package board

import (
	"github.com/nyaruka/phonenumbers"

	"github.com/Alijeyrad/salon_storefront/internal/resource"
)

// Display is the one state the list area is in. The states never overlap.
type Display int

const (
	DisplayLoading Display = iota
	DisplayEmpty
	DisplayFailed
	DisplayRows
)

func (d Display) String() string {
	switch d {
	case DisplayEmpty:
		return "empty"
	case DisplayFailed:
		return "failed"
	case DisplayRows:
		return "rows"
	default:
		return "loading"
	}
}

var statusLabels = map[resource.Status]string{
	resource.StatusPending:   "En attente",
	resource.StatusConfirmed: "Confirmé",
	resource.StatusCancelled: "Annulé",
}

var statusClasses = map[resource.Status]string{
	resource.StatusPending:   "bg-yellow-100 text-yellow-800",
	resource.StatusConfirmed: "bg-green-100 text-green-800",
	resource.StatusCancelled: "bg-red-100 text-red-800",
}

func StatusLabel(s resource.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func StatusClass(s resource.Status) string {
	if c, ok := statusClasses[s]; ok {
		return c
	}
	return "bg-gray-100 text-gray-800"
}

// StatusOption is one entry of a status select.
type StatusOption struct {
	Value    resource.Status
	Label    string
	Selected bool
}

func StatusOptions(current resource.Status) []StatusOption {
	opts := make([]StatusOption, 0, len(resource.Statuses))
	for _, s := range resource.Statuses {
		opts = append(opts, StatusOption{Value: s, Label: StatusLabel(s), Selected: s == current})
	}
	return opts
}

// Row is one appointment ready for the table.
type Row struct {
	ID          int
	ClientName  string
	ClientPhone string
	ClientEmail string
	Service     string
	EmployeeID  int
	Employee    string
	Date        string
	Status      resource.Status
	StatusLabel string
	StatusClass string
	Source      string
	Notes       string
}

const rowDateLayout = "02/01/2006 15:04"

func toRow(a resource.Appointment, region string) Row {
	r := Row{
		ID:          a.ID,
		ClientName:  a.ClientName,
		ClientPhone: formatPhone(a.ClientPhone, region),
		ClientEmail: a.ClientEmail,
		Service:     a.Service.Name,
		Date:        a.StartAt,
		Status:      a.Status,
		StatusLabel: StatusLabel(a.Status),
		StatusClass: StatusClass(a.Status),
		Source:      a.Source,
		Notes:       a.Notes,
	}
	if a.Employee != nil {
		r.EmployeeID = a.Employee.ID
		r.Employee = a.Employee.Name
	}
	if t, ok := a.StartTime(); ok {
		r.Date = t.Format(rowDateLayout)
	}
	return r
}

// formatPhone renders a number in the salon region's national format. Input
// the library cannot parse is shown as typed.
func formatPhone(raw, region string) string {
	if raw == "" || region == "" {
		return raw
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return raw
	}
	if phonenumbers.GetRegionCodeForNumber(num) == region {
		return phonenumbers.Format(num, phonenumbers.NATIONAL)
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}
