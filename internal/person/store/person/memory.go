package person

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"people/internal/person/models"
	"people/internal/person/query"
	"people/pkg/platform/sentinel"
)

// InMemoryStore keeps people in a map and evaluates predicates in process.
// Null attributes sort after every value ascending, as Postgres does.
type InMemoryStore struct {
	mu     sync.RWMutex
	people map[int64]models.Person
	nextID int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{people: make(map[int64]models.Person)}
}

func (s *InMemoryStore) Create(ctx context.Context, p models.Person) (models.Person, error) {
	if err := ctx.Err(); err != nil {
		return models.Person{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := p.Clone()
	stored.ID = s.nextID
	s.people[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *InMemoryStore) Update(ctx context.Context, p models.Person) (models.Person, error) {
	if err := ctx.Err(); err != nil {
		return models.Person{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.people[p.ID]; !ok {
		return models.Person{}, sentinel.ErrNotFound
	}
	s.people[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id int64) (models.Person, error) {
	if err := ctx.Err(); err != nil {
		return models.Person{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.people[id]; ok {
		return p.Clone(), nil
	}
	return models.Person{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.people, id)
	return nil
}

func (s *InMemoryStore) Find(ctx context.Context, p query.Predicate) ([]models.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched := s.match(p)
	sortPeople(matched, []models.Order{{Field: models.SortByID, Direction: models.Asc}})
	return matched, nil
}

func (s *InMemoryStore) FindPage(ctx context.Context, p query.Predicate, pageable models.Pageable) (models.Page, error) {
	if err := ctx.Err(); err != nil {
		return models.Page{}, err
	}
	if err := pageable.Validate(); err != nil {
		return models.Page{}, err
	}
	matched := s.match(p)
	sortPeople(matched, pageable.Orders())

	total := int64(len(matched))
	start := min(pageable.Offset(), total)
	end := min(start+int64(pageable.Size), total)
	return models.NewPage(slices.Clone(matched[start:end]), pageable, total), nil
}

func (s *InMemoryStore) match(p query.Predicate) []models.Person {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Person{}
	for _, person := range s.people {
		if p.Matches(person) {
			matched = append(matched, person.Clone())
		}
	}
	return matched
}

func sortPeople(people []models.Person, orders []models.Order) {
	slices.SortStableFunc(people, func(a, b models.Person) int {
		for _, o := range orders {
			c := compareField(a, b, o.Field)
			if o.Direction == models.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareField(a, b models.Person, field models.SortField) int {
	switch field {
	case models.SortByNationalID:
		return compareNullable(a.NationalID, b.NationalID)
	case models.SortByFullName:
		return compareNullable(a.FullName, b.FullName)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

func compareNullable(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
