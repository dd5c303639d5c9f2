package grpcsvc

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/export"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
	saborv1 "github.com/vladislavdragonenkov/sabor/proto/sabor/v1"
)

// Поля заказа в Struct.
const (
	FieldID           = "id"
	FieldCustomerName = "customer_name"
	FieldAddress      = "address"
	FieldProducts     = "products"
	FieldQuantities   = "quantities"
	FieldCreatedAt    = "created_at"

	FieldFormat = "format"

	// HeaderExportFilename и HeaderExportContentType описывают артефакт ExportOrders.
	HeaderExportFilename    = "x-export-filename"
	HeaderExportContentType = "x-export-content-type"
)

// OrderLedger - операции реестра, которые нужны gRPC-слою.
type OrderLedger interface {
	Create(ctx context.Context, candidate domain.Candidate) (domain.OrderRecord, error)
	Update(ctx context.Context, id string, candidate domain.Candidate) (domain.OrderRecord, error)
	Delete(ctx context.Context, id string) error
	Get(id string) (domain.OrderRecord, error)
	Search(query string) iter.Seq[domain.OrderRecord]
	All() []domain.OrderRecord
}

// LedgerService реализует sabor.v1.LedgerService поверх реестра заказов.
type LedgerService struct {
	saborv1.UnimplementedLedgerServiceServer

	ledger OrderLedger
	logger *log.Entry
}

// NewLedgerService конструирует сервис.
func NewLedgerService(ledger OrderLedger, logger *log.Entry) *LedgerService {
	if logger == nil {
		logger = log.New().WithField("component", "ledger-service")
	}
	return &LedgerService{ledger: ledger, logger: logger}
}

// CreateOrder регистрирует новый заказ.
func (s *LedgerService) CreateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	candidate, err := CandidateFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	rec, err := s.ledger.Create(ctx, candidate)
	if err != nil {
		return nil, s.toStatus("create", err)
	}
	return RecordToStruct(rec)
}

// UpdateOrder заменяет поля заказа; id берётся из поля "id".
func (s *LedgerService) UpdateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id := strings.TrimSpace(req.GetFields()[FieldID].GetStringValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	candidate, err := CandidateFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	rec, err := s.ledger.Update(ctx, id, candidate)
	if err != nil {
		return nil, s.toStatus("update", err)
	}
	return RecordToStruct(rec)
}

// DeleteOrder удаляет заказ по id.
func (s *LedgerService) DeleteOrder(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.ledger.Delete(ctx, id); err != nil {
		return nil, s.toStatus("delete", err)
	}
	return &emptypb.Empty{}, nil
}

// GetOrder возвращает заказ по id.
func (s *LedgerService) GetOrder(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	rec, err := s.ledger.Get(id)
	if err != nil {
		return nil, s.toStatus("get", err)
	}
	return RecordToStruct(rec)
}

// SearchOrders ищет заказы по подстроке имени клиента без учёта регистра.
func (s *LedgerService) SearchOrders(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	out := &structpb.ListValue{}
	for rec := range s.ledger.Search(req.GetValue()) {
		if err := ctx.Err(); err != nil {
			return nil, status.FromContextError(err).Err()
		}
		item, err := RecordToStruct(rec)
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, structpb.NewStructValue(item))
	}
	return out, nil
}

// ExportOrders строит выгрузку. Для docx-slip нужен id заказа.
// Имя файла и MIME-тип передаются в заголовках ответа.
func (s *LedgerService) ExportOrders(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	fields := req.GetFields()
	format, err := export.ParseFormat(fields[FieldFormat].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var records []domain.OrderRecord
	if id := strings.TrimSpace(fields[FieldID].GetStringValue()); id != "" {
		rec, err := s.ledger.Get(id)
		if err != nil {
			return nil, s.toStatus("export", err)
		}
		records = []domain.OrderRecord{rec}
	} else {
		records = s.ledger.All()
	}

	artifact, err := export.Render(format, records)
	if err != nil {
		return nil, s.toStatus("export", err)
	}

	md := metadata.Pairs(HeaderExportFilename, artifact.Name, HeaderExportContentType, artifact.ContentType)
	if err := grpc.SetHeader(ctx, md); err != nil {
		s.logger.WithError(err).Debug("export headers not sent")
	}
	s.logger.WithFields(log.Fields{"format": format, "orders": len(records)}).Info("export rendered")
	return wrapperspb.Bytes(artifact.Data), nil
}

func (s *LedgerService) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, export.ErrSingleRecord):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrPersistence):
		s.logger.WithError(err).WithField("op", op).Error("ledger storage failed")
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		s.logger.WithError(err).WithField("op", op).Error("ledger operation failed")
		return status.Error(codes.Internal, "internal error")
	}
}

// CandidateFromStruct читает поля формы. Списки принимаются как ListValue
// или как одна строка через запятую.
func CandidateFromStruct(in *structpb.Struct) (domain.Candidate, error) {
	fields := in.GetFields()
	products, err := listField(fields[FieldProducts], FieldProducts)
	if err != nil {
		return domain.Candidate{}, err
	}
	quantities, err := listField(fields[FieldQuantities], FieldQuantities)
	if err != nil {
		return domain.Candidate{}, err
	}
	return domain.Candidate{
		CustomerName: fields[FieldCustomerName].GetStringValue(),
		Address:      fields[FieldAddress].GetStringValue(),
		Products:     products,
		Quantities:   quantities,
	}, nil
}

func listField(v *structpb.Value, name string) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StringValue:
		return domain.SplitList(kind.StringValue), nil
	case *structpb.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, err := scalar(item)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a list or a comma separated string", name)
	}
}

// scalar приводит элемент списка к строке; дробные числа остаются дробными, чтобы валидация их отвергла.
func scalar(v *structpb.Value) (string, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64), nil
	default:
		return "", errors.New("must be a string or a number")
	}
}

// RecordToStruct переводит запись в Struct ответа.
func RecordToStruct(rec domain.OrderRecord) (*structpb.Struct, error) {
	products := make([]any, len(rec.Products))
	for i, p := range rec.Products {
		products[i] = p
	}
	quantities := make([]any, len(rec.Quantities))
	for i, q := range rec.Quantities {
		quantities[i] = q
	}
	out, err := structpb.NewStruct(map[string]any{
		FieldID:           rec.ID,
		FieldCustomerName: rec.CustomerName,
		FieldAddress:      rec.Address,
		FieldProducts:     products,
		FieldQuantities:   quantities,
		FieldCreatedAt:    tabular.FormatTime(rec.CreatedAt),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode order: %v", err)
	}
	return out, nil
}
