package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"people/internal/person/models"
	"people/internal/person/query"
	"people/internal/person/service/mocks"
	dErrors "people/pkg/domain-errors"
	"people/pkg/platform/audit"
	"people/pkg/platform/sentinel"
	"people/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	publisher *mocks.MockAuditPublisher
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.publisher),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func int64Ptr(v int64) *int64 { return &v }

// =============================================================================
// Create
// =============================================================================

func (s *ServiceSuite) TestCreate() {
	s.Run("assigns id and emits audit", func() {
		ctx := requestcontext.WithSubject(requestcontext.WithRequestID(context.Background(), "req-1"), "alice")
		req := &models.PersonRequest{NationalID: models.StringPtr("N1"), FullName: models.StringPtr("Ada")}

		s.store.EXPECT().Create(gomock.Any(), models.Person{NationalID: req.NationalID, FullName: req.FullName}).
			Return(models.Person{ID: 1, NationalID: req.NationalID, FullName: req.FullName}, nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventPersonCreated), e.Action)
				s.Equal("1", e.Subject)
				s.Equal("alice", e.ActorID)
				s.Equal("req-1", e.RequestID)
				return nil
			})

		p, err := s.service.Create(ctx, req)
		s.Require().NoError(err)
		s.Equal(int64(1), p.ID)
	})

	s.Run("rejects a request with an id", func() {
		_, err := s.service.Create(context.Background(), &models.PersonRequest{ID: int64Ptr(3)})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("storage failure is internal", func() {
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.Person{}, errors.New("boom"))

		_, err := s.service.Create(context.Background(), &models.PersonRequest{})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("audit failure does not fail the create", func() {
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.Person{ID: 2}, nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		p, err := s.service.Create(context.Background(), &models.PersonRequest{})
		s.Require().NoError(err)
		s.Equal(int64(2), p.ID)
	})
}

// =============================================================================
// Update
// =============================================================================

func (s *ServiceSuite) TestUpdate() {
	ctx := context.Background()

	s.Run("replaces an existing person", func() {
		req := &models.PersonRequest{ID: int64Ptr(5), FullName: models.StringPtr("New")}
		s.store.EXPECT().Update(gomock.Any(), models.Person{ID: 5, FullName: req.FullName}).
			Return(models.Person{ID: 5, FullName: req.FullName}, nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		p, created, err := s.service.Update(ctx, req)
		s.Require().NoError(err)
		s.False(created)
		s.Equal("New", *p.FullName)
	})

	s.Run("without id creates", func() {
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.Person{ID: 9}, nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		p, created, err := s.service.Update(ctx, &models.PersonRequest{FullName: models.StringPtr("x")})
		s.Require().NoError(err)
		s.True(created)
		s.Equal(int64(9), p.ID)
	})

	s.Run("unknown id is not found", func() {
		s.store.EXPECT().Update(gomock.Any(), gomock.Any()).Return(models.Person{}, sentinel.ErrNotFound)

		_, _, err := s.service.Update(ctx, &models.PersonRequest{ID: int64Ptr(404)})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Read and delete
// =============================================================================

func (s *ServiceSuite) TestFindOne() {
	ctx := context.Background()

	s.Run("found", func() {
		s.store.EXPECT().FindByID(gomock.Any(), int64(1)).Return(models.Person{ID: 1}, nil)

		p, err := s.service.FindOne(ctx, 1)
		s.Require().NoError(err)
		s.Equal(int64(1), p.ID)
	})

	s.Run("missing", func() {
		s.store.EXPECT().FindByID(gomock.Any(), int64(2)).Return(models.Person{}, sentinel.ErrNotFound)

		_, err := s.service.FindOne(ctx, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestDelete() {
	s.store.EXPECT().Delete(gomock.Any(), int64(7)).Return(nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventPersonDeleted), e.Action)
			s.Equal("7", e.Subject)
			return nil
		})

	s.Require().NoError(s.service.Delete(context.Background(), 7))
}

// =============================================================================
// Search routing
// =============================================================================

func (s *ServiceSuite) TestSearch() {
	ctx := context.Background()
	pageable := models.DefaultPageable()

	s.Run("no keyword and no criteria lists everyone", func() {
		s.store.EXPECT().FindPage(gomock.Any(), gomock.Any(), pageable).
			DoAndReturn(func(_ context.Context, p query.Predicate, _ models.Pageable) (models.Page, error) {
				s.Equal(query.OpAll, p.Op())
				return models.Page{}, nil
			})

		_, err := s.service.Search(ctx, "", query.Criteria{}, pageable)
		s.Require().NoError(err)
	})

	s.Run("criteria are ANDed", func() {
		s.store.EXPECT().FindPage(gomock.Any(), gomock.Any(), pageable).
			DoAndReturn(func(_ context.Context, p query.Predicate, _ models.Pageable) (models.Page, error) {
				s.Equal("(id in [1 2] AND nationalId specified true)", p.String())
				return models.Page{}, nil
			})

		_, err := s.service.Search(ctx, "", query.Criteria{
			ID:         query.In[int64](1, 2),
			NationalID: query.Specified[string](true),
		}, pageable)
		s.Require().NoError(err)
	})

	s.Run("keyword ORs contains over the string fields", func() {
		s.store.EXPECT().FindPage(gomock.Any(), gomock.Any(), pageable).
			DoAndReturn(func(_ context.Context, p query.Predicate, _ models.Pageable) (models.Page, error) {
				s.Equal("(nationalId contains Jo OR fullName contains Jo)", p.String())
				return models.Page{}, nil
			})

		_, err := s.service.Search(ctx, "Jo", query.Criteria{ID: query.Equals[int64](1)}, pageable)
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestKeywordCriteriaLeavesIDUnset() {
	c := KeywordCriteria("42")
	s.False(c.ID.IsSet())
	s.Equal(query.KindContains, c.NationalID.Kind())
	s.Equal(query.KindContains, c.FullName.Kind())
}
