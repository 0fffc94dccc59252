package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/internal/service/catalog"
)

// Form field names. They double as the backend property paths, except for
// date and time which the backend only knows as startAt.
const (
	FieldClientName  = "clientName"
	FieldClientPhone = "clientPhone"
	FieldClientEmail = "clientEmail"
	FieldService     = "service"
	FieldEmployee    = "employee"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldNotes       = "notes"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9+\s]{8,15}$`)
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// Form is what the visitor typed. Service and Employee hold option values;
// an empty Employee means any available employee.
type Form struct {
	ClientName  string
	ClientPhone string
	ClientEmail string
	Service     string
	Employee    string
	Date        string
	Time        string
	Notes       string
}

func (f Form) trimmed() Form {
	return Form{
		ClientName:  strings.TrimSpace(f.ClientName),
		ClientPhone: strings.TrimSpace(f.ClientPhone),
		ClientEmail: strings.TrimSpace(f.ClientEmail),
		Service:     strings.TrimSpace(f.Service),
		Employee:    strings.TrimSpace(f.Employee),
		Date:        strings.TrimSpace(f.Date),
		Time:        strings.TrimSpace(f.Time),
		Notes:       strings.TrimSpace(f.Notes),
	}
}

type rules struct {
	today    time.Time
	maxNotes int
}

// validate returns one message per failing field. Options are checked
// against what was actually loaded for the salon.
func (r rules) validate(f Form, view catalog.SalonView) map[string]string {
	errs := map[string]string{}

	if f.ClientName == "" {
		errs[FieldClientName] = MsgRequired
	}

	switch {
	case f.ClientPhone == "":
		errs[FieldClientPhone] = MsgRequired
	case !phonePattern.MatchString(f.ClientPhone):
		errs[FieldClientPhone] = MsgInvalidPhone
	}

	if f.ClientEmail != "" && !emailPattern.MatchString(f.ClientEmail) {
		errs[FieldClientEmail] = MsgInvalidEmail
	}

	if f.Service == "" {
		errs[FieldService] = MsgRequired
	} else if id, err := strconv.Atoi(f.Service); err != nil || !view.HasService(id) {
		errs[FieldService] = MsgUnknownOption
	}

	if f.Employee != "" {
		if id, err := strconv.Atoi(f.Employee); err != nil || !view.HasEmployee(id) {
			errs[FieldEmployee] = MsgUnknownOption
		}
	}

	if f.Date == "" {
		errs[FieldDate] = MsgRequired
	} else if d, err := time.Parse(dateLayout, f.Date); err != nil {
		errs[FieldDate] = MsgInvalidDate
	} else if !r.today.IsZero() && d.Before(r.today) {
		errs[FieldDate] = MsgPastDate
	}

	if f.Time == "" {
		errs[FieldTime] = MsgRequired
	} else if _, err := time.Parse(timeLayout, f.Time); err != nil {
		errs[FieldTime] = MsgInvalidTime
	}

	if r.maxNotes > 0 && utf8.RuneCountInString(f.Notes) > r.maxNotes {
		errs[FieldNotes] = MsgNotesTooLong
	}

	return errs
}

// payload composes the creation body. startAt is salon-local with no zone
// suffix; an empty employee is left out entirely.
func payload(slug string, f Form) resource.AppointmentPayload {
	p := resource.AppointmentPayload{
		ClientName:  f.ClientName,
		ClientPhone: f.ClientPhone,
		ClientEmail: f.ClientEmail,
		Salon:       resource.SalonRef(slug),
		StartAt:     f.Date + "T" + f.Time + ":00",
		Source:      resource.SourceWeb,
		Notes:       f.Notes,
	}
	if id, err := strconv.Atoi(f.Service); err == nil {
		p.Service = resource.ServiceRef(id)
	}
	if f.Employee != "" {
		if id, err := strconv.Atoi(f.Employee); err == nil {
			p.Employee = resource.EmployeeRef(id)
		}
	}
	return p
}

// formField maps a backend property path onto the field that displays it.
func formField(path string) (string, bool) {
	switch path {
	case "startAt":
		return FieldDate, true
	case FieldClientName, FieldClientPhone, FieldClientEmail, FieldService, FieldEmployee, FieldNotes:
		return path, true
	}
	return "", false
}
