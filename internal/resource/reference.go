package resource

import "strconv"

// Reference strings encode relations in write payloads. The backend only
// accepts this exact shape.
const (
	CollectionSalons    = "salons"
	CollectionServices  = "services"
	CollectionEmployees = "employees"

	refPrefix = "/api/"
)

// SalonRef addresses a salon by its slug, the salon's public identifier.
func SalonRef(slug string) string {
	return refPrefix + CollectionSalons + "/" + slug
}

func ServiceRef(id int) string {
	return refPrefix + CollectionServices + "/" + strconv.Itoa(id)
}

func EmployeeRef(id int) string {
	return refPrefix + CollectionEmployees + "/" + strconv.Itoa(id)
}
