package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

type SnapshotStoreSuite struct {
	suite.Suite
	store    *Store
	snapshot *SnapshotStore
	ctx      context.Context
}

func TestSnapshotStoreSuite(t *testing.T) {
	suite.Run(t, new(SnapshotStoreSuite))
}

func (s *SnapshotStoreSuite) SetupTest() {
	s.store = openPostgresStoreForIntegrationTest(s.T())
	s.snapshot = NewSnapshotStore(s.store)
	s.ctx = context.Background()
}

func (s *SnapshotStoreSuite) records() []domain.OrderRecord {
	created := time.Date(2025, 3, 14, 9, 30, 5, 0, time.UTC)
	return []domain.OrderRecord{
		{ID: "order-b", CustomerName: "Bia", Products: []string{"Pão", "Bolo"}, Quantities: []int{2, 1}, CreatedAt: created},
		{ID: "order-a", CustomerName: "Ana", Address: "Rua A, 1", Products: []string{"Queijo"}, Quantities: []int{3}, CreatedAt: created.Add(time.Minute)},
	}
}

func (s *SnapshotStoreSuite) TestEmptyTableLoadsEmpty() {
	records, err := s.snapshot.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *SnapshotStoreSuite) TestSaveLoadKeepsOrder() {
	s.Require().NoError(s.snapshot.Save(s.ctx, s.records()))

	loaded, err := s.snapshot.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.records(), loaded)
}

func (s *SnapshotStoreSuite) TestSaveReplacesWholeTable() {
	s.Require().NoError(s.snapshot.Save(s.ctx, s.records()))
	s.Require().NoError(s.snapshot.Save(s.ctx, s.records()[1:]))

	loaded, err := s.snapshot.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)
	s.Equal("order-a", loaded[0].ID)
}

func (s *SnapshotStoreSuite) TestFailedSaveKeepsPreviousSnapshot() {
	s.Require().NoError(s.snapshot.Save(s.ctx, s.records()))

	dup := s.records()
	dup[1].ID = dup[0].ID
	s.Require().Error(s.snapshot.Save(s.ctx, dup))

	loaded, err := s.snapshot.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.records(), loaded)
}

func (s *SnapshotStoreSuite) TestCorruptRowFailsLoad() {
	_, err := s.store.DB().ExecContext(s.ctx, `
		INSERT INTO orders (id, position, customer_name, address, products, quantities, created_at)
		VALUES ('bad', 0, 'Ana', '', 'Pão, Bolo', '1', NOW())
	`)
	s.Require().NoError(err)

	_, err = s.snapshot.Load(s.ctx)
	s.Require().Error(err)
	s.True(errors.Is(err, domain.ErrCorruptSnapshot))
}

func (s *SnapshotStoreSuite) TestPing() {
	s.NoError(s.snapshot.Ping(s.ctx))
}
