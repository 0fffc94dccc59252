package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/Alijeyrad/salon_storefront/internal/query"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
)

// Query key roots. Downstream keys carry the salon id.
const (
	KeySalons    = "salons"
	KeySalon     = "salon"
	KeyServices  = "services"
	KeyEmployees = "employees"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// API is the slice of the resource client the public pages read from.
type API interface {
	ListPublishedSalons(ctx context.Context) ([]resource.Salon, error)
	GetSalon(ctx context.Context, slug string) (resource.Salon, error)
	ListSalonServices(ctx context.Context, salonID int) ([]resource.Service, error)
	ListSalonEmployees(ctx context.Context, salonID int) ([]resource.Employee, error)
}

// Listing is the public salon list, optionally narrowed to one city.
type Listing struct {
	Status query.Status
	Salons []resource.Salon
	Cities []string
	City   string
	Err    error
}

// SalonView is the state of the three nodes of one salon page.
type SalonView struct {
	Salon     query.Snapshot[resource.Salon]
	Services  query.Snapshot[[]resource.Service]
	Employees query.Snapshot[[]resource.Employee]
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Listing waits for the published salons, bounded by ctx.
	Listing(ctx context.Context, city string) Listing
	// Salon returns the dependent nodes for one salon page.
	Salon(slug string) *Graph
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type catalogService struct {
	api   API
	cache *query.Client
}

func New(api API, cache *query.Client) Service {
	return &catalogService{api: api, cache: cache}
}

func (s *catalogService) Listing(ctx context.Context, city string) Listing {
	snap := query.Await(ctx, s.cache, query.Key{KeySalons, "published"}, s.api.ListPublishedSalons)

	l := Listing{Status: snap.Status, Err: snap.Err, City: strings.TrimSpace(city)}
	if snap.Status != query.StatusSuccess {
		return l
	}

	seen := map[string]bool{}
	for _, salon := range snap.Value {
		if !salon.IsPublished {
			continue
		}
		if salon.City != "" && !seen[salon.City] {
			seen[salon.City] = true
			l.Cities = append(l.Cities, salon.City)
		}
		if l.City == "" || strings.EqualFold(salon.City, l.City) {
			l.Salons = append(l.Salons, salon)
		}
	}
	sort.Strings(l.Cities)
	return l
}

// Graph is salon -> {services, employees}. The two downstream nodes stay
// idle until the salon has resolved to an id, and are keyed by that id.
type Graph struct {
	SalonNode     *query.Node[resource.Salon]
	ServicesNode  *query.Node[[]resource.Service]
	EmployeesNode *query.Node[[]resource.Employee]
}

func (s *catalogService) Salon(slug string) *Graph {
	g := &Graph{}

	g.SalonNode = query.NewNode(s.cache, KeySalon, nil, func() (query.Plan[resource.Salon], bool) {
		if strings.TrimSpace(slug) == "" {
			return query.Plan[resource.Salon]{}, false
		}
		return query.Plan[resource.Salon]{
			Key: query.Key{KeySalon, slug},
			Fetch: func(ctx context.Context) (resource.Salon, error) {
				return s.api.GetSalon(ctx, slug)
			},
		}, true
	})

	upstream := []query.Dependency{g.SalonNode}

	g.ServicesNode = query.NewNode(s.cache, KeyServices, upstream, func() (query.Plan[[]resource.Service], bool) {
		id, ok := g.salonID()
		if !ok {
			return query.Plan[[]resource.Service]{}, false
		}
		return query.Plan[[]resource.Service]{
			Key: query.Key{KeyServices, strconv.Itoa(id)},
			Fetch: func(ctx context.Context) ([]resource.Service, error) {
				return s.api.ListSalonServices(ctx, id)
			},
		}, true
	})

	g.EmployeesNode = query.NewNode(s.cache, KeyEmployees, upstream, func() (query.Plan[[]resource.Employee], bool) {
		id, ok := g.salonID()
		if !ok {
			return query.Plan[[]resource.Employee]{}, false
		}
		return query.Plan[[]resource.Employee]{
			Key: query.Key{KeyEmployees, strconv.Itoa(id)},
			Fetch: func(ctx context.Context) ([]resource.Employee, error) {
				return s.api.ListSalonEmployees(ctx, id)
			},
		}, true
	})

	return g
}

func (g *Graph) salonID() (int, bool) {
	s := g.SalonNode.Peek()
	if s.Status != query.StatusSuccess || s.Value.ID == 0 {
		return 0, false
	}
	return s.Value.ID, true
}

// Resolve waits for the salon, then for services and employees side by
// side. Whatever has not settled when ctx ends is reported as pending.
func (g *Graph) Resolve(ctx context.Context) SalonView {
	g.SalonNode.Resolve(ctx)
	query.ResolveAll(ctx, g.ServicesNode, g.EmployeesNode)
	return SalonView{
		Salon:     g.SalonNode.Peek(),
		Services:  g.ServicesNode.Peek(),
		Employees: g.EmployeesNode.Peek(),
	}
}

// Settled reports whether no node is still waiting on the backend.
func (v SalonView) Settled() bool {
	return v.Salon.Status != query.StatusPending &&
		v.Services.Status != query.StatusPending &&
		v.Employees.Status != query.StatusPending
}

// HasService reports whether id is one of the loaded services.
func (v SalonView) HasService(id int) bool {
	for _, s := range v.Services.Value {
		if s.ID == id {
			return true
		}
	}
	return false
}

// HasEmployee reports whether id is one of the loaded employees.
func (v SalonView) HasEmployee(id int) bool {
	for _, e := range v.Employees.Value {
		if e.ID == id {
			return true
		}
	}
	return false
}
