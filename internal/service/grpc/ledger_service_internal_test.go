package grpcsvc

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
)

type brokenLedger struct {
	err error
}

func (b brokenLedger) Create(context.Context, domain.Candidate) (domain.OrderRecord, error) {
	return domain.OrderRecord{}, b.err
}
func (b brokenLedger) Update(context.Context, string, domain.Candidate) (domain.OrderRecord, error) {
	return domain.OrderRecord{}, b.err
}
func (b brokenLedger) Delete(context.Context, string) error { return b.err }
func (b brokenLedger) Get(string) (domain.OrderRecord, error) {
	return domain.OrderRecord{}, b.err
}
func (b brokenLedger) Search(string) iter.Seq[domain.OrderRecord] {
	return func(func(domain.OrderRecord) bool) {}
}
func (b brokenLedger) All() []domain.OrderRecord { return nil }

func TestToStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{err: &domain.ValidationError{Kind: domain.KindMissingField, Field: "products", Index: -1}, code: codes.InvalidArgument},
		{err: &domain.NotFoundError{ID: "x"}, code: codes.NotFound},
		{err: &domain.PersistenceError{Op: "save", Cause: errors.New("io")}, code: codes.Unavailable},
		{err: context.DeadlineExceeded, code: codes.DeadlineExceeded},
		{err: errors.New("boom"), code: codes.Internal},
	}

	for _, tc := range cases {
		svc := NewLedgerService(brokenLedger{err: tc.err}, nil)
		_, err := svc.GetOrder(context.Background(), wrapperspb.String("x"))
		assert.Equal(t, tc.code, status.Code(err), tc.err.Error())
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	svc := NewLedgerService(brokenLedger{err: errors.New("secret detail")}, nil)
	_, err := svc.DeleteOrder(context.Background(), wrapperspb.String("x"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret detail")
}

func TestCandidateFromStruct(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{
		FieldCustomerName: " Ana ",
		FieldProducts:     []any{"Pão", "Bolo"},
		FieldQuantities:   []any{2, 1.5},
		FieldAddress:      nil,
	})
	require.NoError(t, err)

	candidate, err := CandidateFromStruct(in)
	require.NoError(t, err)
	assert.Equal(t, " Ana ", candidate.CustomerName)
	assert.Equal(t, []string{"Pão", "Bolo"}, candidate.Products)
	assert.Equal(t, []string{"2", "1.5"}, candidate.Quantities)
	assert.Empty(t, candidate.Address)

	empty, err := CandidateFromStruct(nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Products)
}

func TestNilRequests(t *testing.T) {
	svc := NewLedgerService(brokenLedger{}, nil)

	_, err := svc.CreateOrder(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, err = svc.UpdateOrder(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, err = svc.GetOrder(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
