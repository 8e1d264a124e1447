//go:build integration

package person

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"people/internal/person/models"
	"people/internal/person/query"
	txcontext "people/pkg/platform/tx"
	"people/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	contractSuite
	postgres *containers.PostgresContainer
	pg       *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.pg = NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "person"))
	s.store = s.pg
}

func (s *PostgresStoreSuite) TestFindPageInsideTransaction() {
	ctx := context.Background()
	s.seed()

	err := txcontext.RunInTx(ctx, s.postgres.DB, func(ctx context.Context) error {
		page, err := s.pg.FindPage(ctx, query.MatchAll(), models.Pageable{Size: 2})
		s.Require().NoError(err)
		s.Len(page.Content, 2)
		s.Equal(int64(4), page.TotalElements)
		return nil
	})
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestRollbackDiscardsCreate() {
	ctx := context.Background()
	var createdID int64

	err := txcontext.RunInTx(ctx, s.postgres.DB, func(ctx context.Context) error {
		p, err := s.pg.Create(ctx, models.Person{FullName: models.StringPtr("tmp")})
		s.Require().NoError(err)
		createdID = p.ID
		return sql.ErrTxDone
	})
	s.Require().ErrorIs(err, sql.ErrTxDone)

	_, err = s.pg.FindByID(ctx, createdID)
	s.Error(err)
}

func (s *PostgresStoreSuite) TestBackslashOperandIsLiteral() {
	ctx := context.Background()
	_, err := s.pg.Create(ctx, models.Person{FullName: models.StringPtr(`C:\temp`)})
	s.Require().NoError(err)
	_, err = s.pg.Create(ctx, models.Person{FullName: models.StringPtr(`C:temp`)})
	s.Require().NoError(err)

	people := s.find(query.Criteria{FullName: query.Contains(`:\t`)}, query.CombinatorAnd)
	s.Len(people, 1)
}
