package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yuZuPluZ/tickets/internal/inventory"
	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/queue"
	"github.com/yuZuPluZ/tickets/internal/repository"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
)

// RefundService 退票審核流程
type RefundService interface {
	// Request 申請退票：票必須是申請人持有且仍為售出狀態，金額取申請
	// 當下的分區票價
	Request(ctx context.Context, req model.CreateRefundRequest) (*model.RefundRequest, error)
	// Approve 核准：申請 pending → approved、票券 sold → refunded，
	// 在同一個保護區段內完成
	Approve(ctx context.Context, requestID int, approverID int) error
	Reject(ctx context.Context, requestID int, approverID int) error
	GetByID(ctx context.Context, id int) (*model.RefundRequest, error)
	List(ctx context.Context) ([]*model.RefundRequest, error)
}

type RefundServiceImpl struct {
	refunds   repository.RefundRepository
	users     repository.UserRepository
	inventory inventory.Manager
	queue     queue.SaleEventQueue
	log       *zap.Logger
}

func NewRefundService(
	refunds repository.RefundRepository,
	users repository.UserRepository,
	inv inventory.Manager,
	eventQueue queue.SaleEventQueue,
	log *zap.Logger,
) RefundService {
	return &RefundServiceImpl{
		refunds:   refunds,
		users:     users,
		inventory: inv,
		queue:     eventQueue,
		log:       log,
	}
}

func (s *RefundServiceImpl) Request(ctx context.Context, req model.CreateRefundRequest) (*model.RefundRequest, error) {
	if _, err := s.users.FindByID(ctx, req.BuyerID); err != nil {
		return nil, err
	}

	ticket, zone, err := s.inventory.TicketInfo(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != model.TicketStatusSold {
		return nil, apperrors.ErrRefundNotPending
	}
	if ticket.BuyerID != req.BuyerID {
		return nil, apperrors.ErrTicketNotOwned
	}

	request := &model.RefundRequest{
		TicketID: ticket.ID,
		ZoneID:   zone.ID,
		BuyerID:  req.BuyerID,
		Amount:   zone.Price,
	}
	return s.refunds.Create(ctx, request)
}

func (s *RefundServiceImpl) Approve(ctx context.Context, requestID int, approverID int) error {
	if err := s.requireOrganizer(ctx, approverID); err != nil {
		return err
	}

	var refunded *model.RefundRequest
	err := s.refunds.Resolve(ctx, requestID, model.RefundStatusApproved, func(request *model.RefundRequest) error {
		// The ticket flip happens inside the guarded section: the request
		// is never observably approved while the ticket is still sold.
		if err := s.inventory.MarkRefunded(ctx, request.TicketID); err != nil {
			return err
		}
		refunded = request
		return nil
	})
	if err != nil {
		return err
	}

	_, zone, err := s.inventory.TicketInfo(ctx, refunded.TicketID)
	if err != nil {
		return err
	}

	if err := s.queue.Publish(context.WithoutCancel(ctx), &model.SaleEvent{
		Type:       model.SaleEventTicketRefunded,
		EventID:    zone.EventID,
		ZoneType:   zone.Type,
		BuyerID:    refunded.BuyerID,
		Quantity:   1,
		Amount:     refunded.Amount,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warn("failed to publish refund event", zap.Error(err), zap.Int("refund_id", requestID))
	}

	return nil
}

func (s *RefundServiceImpl) Reject(ctx context.Context, requestID int, approverID int) error {
	if err := s.requireOrganizer(ctx, approverID); err != nil {
		return err
	}
	return s.refunds.Resolve(ctx, requestID, model.RefundStatusRejected, nil)
}

func (s *RefundServiceImpl) GetByID(ctx context.Context, id int) (*model.RefundRequest, error) {
	return s.refunds.FindByID(ctx, id)
}

func (s *RefundServiceImpl) List(ctx context.Context) ([]*model.RefundRequest, error) {
	return s.refunds.List(ctx)
}

func (s *RefundServiceImpl) requireOrganizer(ctx context.Context, userID int) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasRole(model.RoleEventOrganizer) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}
