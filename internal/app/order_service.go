package app

import (
	"context"
	"time"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/clock"
	"github.com/GGyongfeng/HuiXueJiaoPei/internal/domain"
)

const defaultCity = "Tianjin"
const defaultTeacherPref = "None"

// OrderRepository is the storage contract the service depends on.
type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.Order, error)
	Update(ctx context.Context, id int64, upd domain.OrderUpdate, staffID int64, at time.Time) error
	SoftDelete(ctx context.Context, id, staffID int64, at time.Time) error
	MarkFulfilled(ctx context.Context, id, teacherID, staffID int64, at time.Time) error
	MarkUnfulfilled(ctx context.Context, id, staffID int64, at time.Time) error
	List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error)
	TeacherList(ctx context.Context, q domain.ListQuery) (domain.ListResult, error)
}

type OrderService struct {
	repo  OrderRepository
	clock clock.Clock
}

func NewOrderService(repo OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:  repo,
		clock: clk,
	}
}

type CreateOrderInput struct {
	Code            string
	StudentGender   string
	TeachingType    string
	StudentGrade    string
	StudentLevel    string
	GradeScore      string
	Subjects        []string
	TeacherType     string
	TeacherGender   string
	OrderTags       []string
	District        string
	City            string
	Address         string
	TutoringTime    string
	Salary          string
	RequirementDesc string
	StaffID         int64
}

// Create validates the input, fills documented defaults and inserts the
// order. Code uniqueness is enforced by the storage constraint; a violation
// surfaces as domain.ErrOrderCodeTaken.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (int64, error) {
	if in.Code == "" {
		return 0, domain.ErrOrderCodeRequired
	}
	if len(in.Subjects) == 0 {
		return 0, domain.ErrSubjectsRequired
	}
	if in.StaffID == 0 {
		return 0, domain.ErrStaffRequired
	}

	city := in.City
	if city == "" {
		city = defaultCity
	}
	teacherType := in.TeacherType
	if teacherType == "" {
		teacherType = defaultTeacherPref
	}
	teacherGender := in.TeacherGender
	if teacherGender == "" {
		teacherGender = defaultTeacherPref
	}

	order := domain.Order{
		Code:            in.Code,
		StudentGender:   in.StudentGender,
		TeachingType:    in.TeachingType,
		StudentGrade:    in.StudentGrade,
		StudentLevel:    in.StudentLevel,
		GradeScore:      in.GradeScore,
		Subjects:        in.Subjects,
		TeacherType:     teacherType,
		TeacherGender:   teacherGender,
		OrderTags:       in.OrderTags,
		District:        in.District,
		City:            city,
		Address:         in.Address,
		TutoringTime:    in.TutoringTime,
		Salary:          in.Salary,
		RequirementDesc: in.RequirementDesc,
		CreatedBy:       in.StaffID,
		CreatedAt:       s.clock.Now(),
	}

	return s.repo.Create(ctx, order)
}

// Get fetches one non-deleted order.
func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	if id <= 0 {
		return domain.Order{}, domain.ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update, stamping the acting staff member.
func (s *OrderService) Update(ctx context.Context, id int64, upd domain.OrderUpdate, staffID int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	if staffID == 0 {
		return domain.ErrStaffRequired
	}
	if upd.IsEmpty() {
		return domain.ErrEmptyUpdate
	}
	return s.repo.Update(ctx, id, upd, staffID, s.clock.Now())
}

// Delete soft-deletes an order. A missing or already-deleted target reports
// domain.ErrOrderNotFound.
func (s *OrderService) Delete(ctx context.Context, id, staffID int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	if staffID == 0 {
		return domain.ErrStaffRequired
	}
	return s.repo.SoftDelete(ctx, id, staffID, s.clock.Now())
}

// MarkFulfilled closes the order against a teacher, stamping deal time and
// resolving identities.
func (s *OrderService) MarkFulfilled(ctx context.Context, id, teacherID, staffID int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	if staffID == 0 {
		return domain.ErrStaffRequired
	}
	if teacherID == 0 {
		return domain.ErrTeacherRequired
	}
	return s.repo.MarkFulfilled(ctx, id, teacherID, staffID, s.clock.Now())
}

// MarkUnfulfilled reopens a fulfilled order, clearing its deal fields.
func (s *OrderService) MarkUnfulfilled(ctx context.Context, id, staffID int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	if staffID == 0 {
		return domain.ErrStaffRequired
	}
	return s.repo.MarkUnfulfilled(ctx, id, staffID, s.clock.Now())
}

// List runs the manager listing.
func (s *OrderService) List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error) {
	return s.repo.List(ctx, q)
}

// TeacherList runs the restricted teacher-facing listing.
func (s *OrderService) TeacherList(ctx context.Context, q domain.ListQuery) (domain.ListResult, error) {
	return s.repo.TeacherList(ctx, q)
}
