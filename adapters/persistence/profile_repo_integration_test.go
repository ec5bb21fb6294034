package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/talentforge/candidate-os/internal/domain/candidate"
	"github.com/talentforge/candidate-os/internal/domain/ingest"
	"github.com/talentforge/candidate-os/pkg/logger"
)

type ProfileRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	repo        *PostgresProfileRepo
}

func (s *ProfileRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to init migrations: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pool: %s", err)
	}
	s.dbPool = pool

	s.repo = NewPostgresProfileRepo(pool, 2, logger.NewNop())
}

func (s *ProfileRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

func (s *ProfileRepoIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.dbPool.Exec(ctx, `TRUNCATE candidates, positions, education, ingest_checkpoints`)
	s.Require().NoError(err)
}

func profileFixture(id string, positionCount int) *candidate.CanonicalProfile {
	p := &candidate.CanonicalProfile{
		ID:              id,
		Name:            "Ana Li",
		Location:        "Berlin",
		CurrentTitle:    "Engineer",
		CurrentOrg:      "Acme",
		Seniority:       candidate.SeniorityMid,
		Skills:          []string{"Go", "PostgreSQL"},
		YearsExperience: 5,
		Attributes:      map[string]any{"tags": []any{"golang"}},
		UpdatedAt:       time.Now().UTC(),
		Education: []candidate.EducationEntry{
			{Ordinal: 0, School: "TU Berlin", Degree: "BEng", Field: "CS", Start: "2012-10", End: "2016-09"},
		},
	}
	for i := 0; i < positionCount; i++ {
		p.Positions = append(p.Positions, candidate.Position{
			Ordinal: i, Org: "Acme", Title: "Engineer", Start: "2019-01", End: "2021-06",
		})
	}
	return p
}

func (s *ProfileRepoIntegrationTestSuite) count(table, id string) int {
	var n int
	err := s.dbPool.QueryRow(context.Background(),
		`SELECT count(*) FROM `+table+` WHERE `+keyColumn(table)+` = $1`, id).Scan(&n)
	s.Require().NoError(err)
	return n
}

func keyColumn(table string) string {
	if table == "candidates" {
		return "id"
	}
	return "candidate_id"
}

func (s *ProfileRepoIntegrationTestSuite) TestUpsertInsertsParentAndChildren() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Upsert(ctx, profileFixture("c1", 2)))

	s.Equal(1, s.count("candidates", "c1"))
	s.Equal(2, s.count("positions", "c1"))
	s.Equal(1, s.count("education", "c1"))

	got, err := s.repo.GetByID(ctx, "c1")
	s.Require().NoError(err)
	s.Equal("Ana Li", got.Name)
	s.Equal(candidate.SeniorityMid, got.Seniority)
	s.Equal([]string{"Go", "PostgreSQL"}, got.Skills)
	s.Equal("2019-01", got.Positions[0].Start)
	s.Equal([]any{"golang"}, got.Attributes["tags"])
}

func (s *ProfileRepoIntegrationTestSuite) TestUpsertIsIdempotent() {
	ctx := context.Background()
	p := profileFixture("c1", 3)

	s.Require().NoError(s.repo.Upsert(ctx, p))
	s.Require().NoError(s.repo.Upsert(ctx, p))

	s.Equal(1, s.count("candidates", "c1"))
	s.Equal(3, s.count("positions", "c1"))
	s.Equal(1, s.count("education", "c1"))
}

func (s *ProfileRepoIntegrationTestSuite) TestUpsertReplaceSemantics() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Upsert(ctx, profileFixture("c1", 3)))

	// Re-running after the child list shrank leaves exactly the latest
	// entries, zero orphans.
	shrunk := profileFixture("c1", 1)
	shrunk.CurrentTitle = "Staff Engineer"
	s.Require().NoError(s.repo.Upsert(ctx, shrunk))

	s.Equal(1, s.count("candidates", "c1"))
	s.Equal(1, s.count("positions", "c1"))

	got, err := s.repo.GetByID(ctx, "c1")
	s.Require().NoError(err)
	s.Equal("Staff Engineer", got.CurrentTitle)
	s.Len(got.Positions, 1)
}

func (s *ProfileRepoIntegrationTestSuite) TestUpsertManyWindowed() {
	ctx := context.Background()
	// Window size is 2; five profiles span three windows.
	profiles := []*candidate.CanonicalProfile{
		profileFixture("c1", 1), profileFixture("c2", 1), profileFixture("c3", 1),
		profileFixture("c4", 1), profileFixture("c5", 1),
	}
	s.Require().NoError(s.repo.UpsertMany(ctx, profiles))

	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		s.Equal(1, s.count("candidates", id))
	}
}

func (s *ProfileRepoIntegrationTestSuite) TestSaveWritesCheckpointAtomically() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Save(ctx, profileFixture("c1", 1), "batch-1"))

	ids, err := s.repo.PersistedIDs(ctx, "batch-1")
	s.Require().NoError(err)
	s.True(ids["c1"])

	// A different batch sees nothing.
	other, err := s.repo.PersistedIDs(ctx, "batch-2")
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *ProfileRepoIntegrationTestSuite) TestRecordFailureThenSuccess() {
	ctx := context.Background()
	s.Require().NoError(s.repo.RecordFailure(ctx, "batch-1", ingest.RecordFailure{
		ID: "c1", Step: ingest.StepEnriching, Reason: "rate limited",
	}))

	ids, err := s.repo.PersistedIDs(ctx, "batch-1")
	s.Require().NoError(err)
	s.False(ids["c1"])

	// A later successful save flips the checkpoint to persisted.
	s.Require().NoError(s.repo.Save(ctx, profileFixture("c1", 1), "batch-1"))
	ids, err = s.repo.PersistedIDs(ctx, "batch-1")
	s.Require().NoError(err)
	s.True(ids["c1"])
}

func (s *ProfileRepoIntegrationTestSuite) TestGetByIDNotFound() {
	_, err := s.repo.GetByID(context.Background(), "missing")
	s.ErrorIs(err, candidate.ErrProfileNotFound)
}

func (s *ProfileRepoIntegrationTestSuite) TestHealthy() {
	s.NoError(s.repo.Healthy(context.Background()))
}

func TestProfileRepoIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(ProfileRepoIntegrationTestSuite))
}
