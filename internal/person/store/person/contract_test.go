package person

import (
	"context"
	"errors"

	"github.com/stretchr/testify/suite"

	"people/internal/person/models"
	"people/internal/person/query"
	dErrors "people/pkg/domain-errors"
	"people/pkg/platform/sentinel"
)

// store is what both implementations offer the services.
type store interface {
	Create(ctx context.Context, p models.Person) (models.Person, error)
	Update(ctx context.Context, p models.Person) (models.Person, error)
	FindByID(ctx context.Context, id int64) (models.Person, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, p query.Predicate) ([]models.Person, error)
	FindPage(ctx context.Context, p query.Predicate, pageable models.Pageable) (models.Page, error)
}

// contractSuite holds behaviour shared by the in-memory and Postgres stores.
// Embedding suites provide the store in SetupTest.
type contractSuite struct {
	suite.Suite
	store store
}

func (s *contractSuite) seed() []models.Person {
	ctx := context.Background()
	rows := []models.Person{
		{NationalID: models.StringPtr("AAA"), FullName: models.StringPtr("John Doe")},
		{NationalID: models.StringPtr("BBB"), FullName: models.StringPtr("Jane Roe")},
		{NationalID: nil, FullName: models.StringPtr("Ann 50%_off")},
		{NationalID: models.StringPtr("CCC"), FullName: nil},
	}
	out := make([]models.Person, len(rows))
	for i, r := range rows {
		created, err := s.store.Create(ctx, r)
		s.Require().NoError(err)
		out[i] = created
	}
	return out
}

func ids(people []models.Person) []int64 {
	out := make([]int64, len(people))
	for i, p := range people {
		out[i] = p.ID
	}
	return out
}

func (s *contractSuite) find(c query.Criteria, comb query.Combinator) []int64 {
	p, err := query.Translate(c, comb)
	s.Require().NoError(err)
	people, err := s.store.Find(context.Background(), p)
	s.Require().NoError(err)
	return ids(people)
}

// =============================================================================
// CRUD
// =============================================================================

func (s *contractSuite) TestCreateAssignsIncreasingIDs() {
	people := s.seed()
	s.Require().Len(people, 4)
	for i := 1; i < len(people); i++ {
		s.Greater(people[i].ID, people[i-1].ID)
	}

	got, err := s.store.FindByID(context.Background(), people[2].ID)
	s.Require().NoError(err)
	s.Nil(got.NationalID)
	s.Equal("Ann 50%_off", *got.FullName)
}

func (s *contractSuite) TestUpdate() {
	ctx := context.Background()
	people := s.seed()

	s.Run("replaces attributes", func() {
		p := people[0]
		p.FullName = nil
		_, err := s.store.Update(ctx, p)
		s.Require().NoError(err)

		got, err := s.store.FindByID(ctx, p.ID)
		s.Require().NoError(err)
		s.Nil(got.FullName)
		s.Equal("AAA", *got.NationalID)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.store.Update(ctx, models.Person{ID: 9999})
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})
}

func (s *contractSuite) TestDeleteIsIdempotent() {
	ctx := context.Background()
	people := s.seed()

	s.Require().NoError(s.store.Delete(ctx, people[0].ID))
	s.Require().NoError(s.store.Delete(ctx, people[0].ID))

	_, err := s.store.FindByID(ctx, people[0].ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

// =============================================================================
// Predicate execution
// =============================================================================

func (s *contractSuite) TestFindSemantics() {
	p := ids(s.seed())

	s.Run("empty AND returns everything", func() {
		s.Equal(p, s.find(query.Criteria{}, query.CombinatorAnd))
	})
	s.Run("empty OR returns nothing", func() {
		s.Empty(s.find(query.Criteria{}, query.CombinatorOr))
	})
	s.Run("equals", func() {
		s.Equal([]int64{p[0]}, s.find(query.Criteria{NationalID: query.Equals("AAA")}, query.CombinatorAnd))
		s.Equal([]int64{p[1]}, s.find(query.Criteria{ID: query.Equals(p[1])}, query.CombinatorAnd))
	})
	s.Run("not equals excludes null", func() {
		s.Equal([]int64{p[1], p[3]}, s.find(query.Criteria{NationalID: query.NotEquals("AAA")}, query.CombinatorAnd))
	})
	s.Run("in and not in", func() {
		s.Equal([]int64{p[0], p[3]}, s.find(query.Criteria{NationalID: query.In("AAA", "CCC")}, query.CombinatorAnd))
		s.Equal([]int64{p[1]}, s.find(query.Criteria{NationalID: query.NotIn("AAA", "CCC")}, query.CombinatorAnd))
		s.Empty(s.find(query.Criteria{NationalID: query.In[string]()}, query.CombinatorAnd))
		s.Equal([]int64{p[0], p[1], p[3]}, s.find(query.Criteria{NationalID: query.NotIn[string]()}, query.CombinatorAnd))
		s.Equal([]int64{p[0], p[2]}, s.find(query.Criteria{ID: query.In(p[0], p[2])}, query.CombinatorAnd))
	})
	s.Run("specified", func() {
		s.Equal([]int64{p[0], p[1], p[3]}, s.find(query.Criteria{NationalID: query.Specified[string](true)}, query.CombinatorAnd))
		s.Equal([]int64{p[2]}, s.find(query.Criteria{NationalID: query.Specified[string](false)}, query.CombinatorAnd))
	})
	s.Run("substrings are literal and case sensitive", func() {
		s.Equal([]int64{p[1]}, s.find(query.Criteria{FullName: query.Contains("Roe")}, query.CombinatorAnd))
		s.Empty(s.find(query.Criteria{FullName: query.Contains("roe")}, query.CombinatorAnd))
		s.Equal([]int64{p[2]}, s.find(query.Criteria{FullName: query.Contains("%_")}, query.CombinatorAnd))
		s.Empty(s.find(query.Criteria{FullName: query.Contains("J%e")}, query.CombinatorAnd))
		s.Equal([]int64{p[0], p[2]}, s.find(query.Criteria{FullName: query.DoesNotContain("Roe")}, query.CombinatorAnd))
		s.Equal([]int64{p[1]}, s.find(query.Criteria{FullName: query.StartsWith("Ja")}, query.CombinatorAnd))
		s.Equal([]int64{p[0]}, s.find(query.Criteria{FullName: query.EndsWith("Doe")}, query.CombinatorAnd))
	})
	s.Run("ranges", func() {
		s.Equal([]int64{p[2], p[3]}, s.find(query.Criteria{ID: query.GreaterThan(p[1])}, query.CombinatorAnd))
		s.Equal([]int64{p[0], p[1]}, s.find(query.Criteria{ID: query.LessThanOrEqual(p[1])}, query.CombinatorAnd))
	})
	s.Run("AND and OR diverge", func() {
		c := query.Criteria{NationalID: query.Equals("AAA"), FullName: query.Contains("Roe")}
		s.Empty(s.find(c, query.CombinatorAnd))
		s.Equal([]int64{p[0], p[1]}, s.find(c, query.CombinatorOr))
	})
}

func (s *contractSuite) TestFindPage() {
	ctx := context.Background()
	p := ids(s.seed())

	s.Run("pages are bounded and carry the total", func() {
		page, err := s.store.FindPage(ctx, query.MatchAll(), models.Pageable{Page: 1, Size: 3})
		s.Require().NoError(err)
		s.Equal(int64(4), page.TotalElements)
		s.Equal([]int64{p[3]}, ids(page.Content))
		s.Equal(2, page.TotalPages())
	})

	s.Run("page past the end is empty", func() {
		page, err := s.store.FindPage(ctx, query.MatchAll(), models.Pageable{Page: 5, Size: 3})
		s.Require().NoError(err)
		s.Empty(page.Content)
		s.Equal(int64(4), page.TotalElements)
	})

	s.Run("sort with nulls last ascending and id tiebreaker", func() {
		page, err := s.store.FindPage(ctx, query.MatchAll(), models.Pageable{
			Size: 10,
			Sort: []models.Order{{Field: models.SortByNationalID, Direction: models.Asc}},
		})
		s.Require().NoError(err)
		s.Equal([]int64{p[0], p[1], p[3], p[2]}, ids(page.Content))
	})

	s.Run("descending", func() {
		page, err := s.store.FindPage(ctx, query.MatchAll(), models.Pageable{
			Size: 10,
			Sort: []models.Order{{Field: models.SortByID, Direction: models.Desc}},
		})
		s.Require().NoError(err)
		s.Equal([]int64{p[3], p[2], p[1], p[0]}, ids(page.Content))
	})

	s.Run("OR page of empty criteria is empty", func() {
		none, err := query.Translate(query.Criteria{}, query.CombinatorOr)
		s.Require().NoError(err)
		page, err := s.store.FindPage(ctx, none, models.DefaultPageable())
		s.Require().NoError(err)
		s.Empty(page.Content)
		s.Zero(page.TotalElements)
	})

	s.Run("keyword search", func() {
		keyword, err := query.Translate(query.Criteria{
			NationalID: query.Contains("AAA"),
			FullName:   query.Contains("AAA"),
		}, query.CombinatorOr)
		s.Require().NoError(err)
		page, err := s.store.FindPage(ctx, keyword, models.DefaultPageable())
		s.Require().NoError(err)
		s.Equal([]int64{p[0]}, ids(page.Content))
		s.Equal(int64(1), page.TotalElements)
	})
}

func (s *contractSuite) TestStringSortIsByteOrder() {
	ctx := context.Background()
	var created []int64
	for _, name := range []string{"alice", "Bob", "adam", "Zed"} {
		p, err := s.store.Create(ctx, models.Person{FullName: models.StringPtr(name)})
		s.Require().NoError(err)
		created = append(created, p.ID)
	}

	page, err := s.store.FindPage(ctx, query.MatchAll(), models.Pageable{
		Size: 10,
		Sort: []models.Order{{Field: models.SortByFullName, Direction: models.Asc}},
	})
	s.Require().NoError(err)
	// Upper case sorts before lower case: Bob, Zed, adam, alice.
	s.Equal([]int64{created[1], created[3], created[2], created[0]}, ids(page.Content))
}

func (s *contractSuite) TestFindPageRejectsOverflowingPage() {
	s.seed()

	_, err := s.store.FindPage(context.Background(), query.MatchAll(), models.Pageable{Page: 1 << 62, Size: 2})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *contractSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.store.Find(ctx, query.MatchAll())
	s.True(errors.Is(err, context.Canceled))
}
