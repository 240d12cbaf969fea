package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/yuZuPluZ/tickets/internal/inventory"
	"github.com/yuZuPluZ/tickets/internal/model"
	"github.com/yuZuPluZ/tickets/internal/repository"
	apperrors "github.com/yuZuPluZ/tickets/pkg/app_errors"
)

type UserService interface {
	Register(ctx context.Context, req model.RegisterUserRequest) (*model.User, error)
	// Authenticate 驗證帳密，失敗一律回 ErrInvalidCredentials
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	GrantRole(ctx context.Context, id int, role model.Role) error
	RevokeRole(ctx context.Context, id int, role model.Role) error
	// MyTickets 我的票券：依購票索引回傳票券快照
	MyTickets(ctx context.Context, userID int) ([]model.TicketResponse, error)
}

type UserServiceImpl struct {
	repo       repository.UserRepository
	book       repository.TicketBookRepository
	inventory  inventory.Manager
	bcryptCost int
}

func NewUserService(repo repository.UserRepository, book repository.TicketBookRepository, inv inventory.Manager, bcryptCost int) UserService {
	return &UserServiceImpl{
		repo:       repo,
		book:       book,
		inventory:  inv,
		bcryptCost: bcryptCost,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, req model.RegisterUserRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []model.Role{model.RoleBuyer}
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Roles:        roles,
	}
	return s.repo.Create(ctx, user)
}

func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserServiceImpl) GrantRole(ctx context.Context, id int, role model.Role) error {
	return s.repo.AddRole(ctx, id, role)
}

func (s *UserServiceImpl) RevokeRole(ctx context.Context, id int, role model.Role) error {
	return s.repo.RemoveRole(ctx, id, role)
}

func (s *UserServiceImpl) MyTickets(ctx context.Context, userID int) ([]model.TicketResponse, error) {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	ticketIDs, err := s.book.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tickets := make([]model.TicketResponse, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		ticket, zone, err := s.inventory.TicketInfo(ctx, id)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, model.TicketResponse{
			ID:       ticket.ID,
			ZoneID:   zone.ID,
			ZoneType: zone.Type,
			EventID:  zone.EventID,
			Price:    zone.Price,
			Status:   ticket.Status,
		})
	}
	return tickets, nil
}
