//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
	"github.com/meeeeeooooowwwwwww/updates/internal/storage/sqlgen"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
	sink      *Sink
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_videos.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
	s.sink = NewSink(db)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM videos")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) insertVideos(videos ...domain.Video) {
	statements := make([]string, len(videos))
	for i, v := range videos {
		statements[i] = sqlgen.InsertVideo(v, sqlgen.Postgres)
	}
	s.Require().NoError(s.sink.ApplyBatch(s.ctx, statements))
}

func (s *PostgresIntegrationSuite) video(pid string, sortOrder int64) domain.Video {
	thumb := "https://i.rumble.com/" + pid + ".jpg"
	return domain.Video{
		ID:          "rumble:" + pid,
		PlatformID:  pid,
		Title:       "Video " + pid,
		Link:        "https://rumble.com/" + pid + "-video.html",
		Thumbnail:   &thumb,
		Platform:    "rumble",
		SourceType:  "warroom",
		SortOrder:   sortOrder,
		PublishDate: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC).Add(time.Duration(sortOrder) * time.Minute),
	}
}

func (s *PostgresIntegrationSuite) TestQueryLatest_Empty() {
	head, err := s.sink.QueryLatest(s.ctx)
	s.NoError(err)
	s.Nil(head)
}

func (s *PostgresIntegrationSuite) TestQueryLatest() {
	s.insertVideos(s.video("v1", 1), s.video("v3", 3), s.video("v2", 2))

	head, err := s.sink.QueryLatest(s.ctx)
	s.NoError(err)
	s.Require().NotNil(head)
	s.Equal("rumble:v3", head.ID)
	s.Equal("v3", head.PlatformID)
	s.Equal(int64(3), head.SortOrder)
}

func (s *PostgresIntegrationSuite) TestMaxSortOrder() {
	max, err := s.sink.MaxSortOrder(s.ctx)
	s.NoError(err)
	s.Equal(int64(0), max, "empty table must report 0")

	s.insertVideos(s.video("v1", 1), s.video("v7", 7))

	max, err = s.sink.MaxSortOrder(s.ctx)
	s.NoError(err)
	s.Equal(int64(7), max)
}

func (s *PostgresIntegrationSuite) TestExistingIDs() {
	s.insertVideos(s.video("v1", 1), s.video("v2", 2))

	existing, err := s.sink.ExistingIDs(s.ctx, []string{"rumble:v1", "rumble:v9"})
	s.NoError(err)
	s.Contains(existing, "rumble:v1")
	s.NotContains(existing, "rumble:v9")

	existing, err = s.sink.ExistingIDs(s.ctx, nil)
	s.NoError(err)
	s.Empty(existing)
}

func (s *PostgresIntegrationSuite) TestApplyBatch_DedupById() {
	batch := []string{
		sqlgen.InsertVideo(s.video("v1", 1), sqlgen.Postgres),
		sqlgen.InsertVideo(s.video("v2", 2), sqlgen.Postgres),
	}

	s.Require().NoError(s.sink.ApplyBatch(s.ctx, batch))
	s.Require().NoError(s.sink.ApplyBatch(s.ctx, batch))

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM videos"))
	s.Equal(2, count, "re-applying a batch must not change the row count")

	head, err := s.sink.QueryLatest(s.ctx)
	s.NoError(err)
	s.Equal(int64(2), head.SortOrder, "duplicate inserts must not corrupt ordering")
}

func (s *PostgresIntegrationSuite) TestApplyBatch_EscapedValues() {
	v := s.video("v1", 1)
	v.Title = `It's a "test"`
	s.insertVideos(v)

	var title string
	s.Require().NoError(s.db.GetContext(s.ctx, &title,
		"SELECT title FROM videos WHERE id = $1", "rumble:v1"))
	s.Equal(`It's a "test"`, title)
}

func (s *PostgresIntegrationSuite) TestApplyBatch_NullThumbnail() {
	v := s.video("v1", 1)
	v.Thumbnail = nil
	s.insertVideos(v)

	var thumbnail *string
	s.Require().NoError(s.db.GetContext(s.ctx, &thumbnail,
		"SELECT thumbnail FROM videos WHERE id = $1", "rumble:v1"))
	s.Nil(thumbnail)
}

func (s *PostgresIntegrationSuite) TestApplyBatch_AtomicChunk() {
	statements := []string{
		sqlgen.InsertVideo(s.video("v1", 1), sqlgen.Postgres),
		"INSERT INTO nonexistent_table (id) VALUES ('x');",
	}

	err := s.sink.ApplyBatch(s.ctx, statements)
	s.Error(err)

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM videos"))
	s.Equal(0, count, "a failed chunk must roll back as one unit of work")
}
