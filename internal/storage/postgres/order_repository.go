package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GGyongfeng/HuiXueJiaoPei/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CodeExists reports whether a non-deleted order already uses code.
func (r *OrderRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM tutor_orders WHERE tutor_code = $1 AND NOT is_deleted)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check order code: %w", err)
	}
	return exists, nil
}

// Create inserts a new order and returns its generated id. The partial unique
// index on live order codes is the authoritative uniqueness check; its
// violation maps to ErrOrderCodeTaken.
func (r *OrderRepository) Create(ctx context.Context, o domain.Order) (int64, error) {
	const stmt = `
INSERT INTO tutor_orders (
	tutor_code, student_gender, teaching_type, student_grade, student_level, grade_score,
	subjects, teacher_type, teacher_gender, order_tags,
	district, city, address, tutoring_time, salary, requirement_desc,
	created_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)
RETURNING id`

	tags := o.OrderTags
	if tags == nil {
		tags = []string{}
	}

	var id int64
	err := r.pool.QueryRow(ctx, stmt,
		o.Code, o.StudentGender, o.TeachingType, o.StudentGrade, o.StudentLevel, o.GradeScore,
		o.Subjects, o.TeacherType, o.TeacherGender, tags,
		o.District, o.City, o.Address, o.TutoringTime, o.Salary, o.RequirementDesc,
		o.CreatedBy, o.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrOrderCodeTaken
		}
		return 0, fmt.Errorf("create order: %w", err)
	}
	return id, nil
}

// GetByID fetches one non-deleted order with its joined display names.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (domain.Order, error) {
	query := managerSelect + `
WHERE t.id = $1 AND NOT t.is_deleted`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	defer rows.Close()

	c := NewComposer(ViewManager)
	if !rows.Next() {
		if rows.Err() != nil {
			return domain.Order{}, fmt.Errorf("get order: %w", rows.Err())
		}
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order, err := c.scanRow(rows)
	if err != nil {
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}
	return order, nil
}

// Update applies a partial update to a non-deleted order, always refreshing
// updated_by/updated_at. Zero affected rows means the order is gone.
func (r *OrderRepository) Update(ctx context.Context, id int64, upd domain.OrderUpdate, staffID int64, at time.Time) error {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if upd.StudentGender != nil {
		add("student_gender", *upd.StudentGender)
	}
	if upd.TeachingType != nil {
		add("teaching_type", *upd.TeachingType)
	}
	if upd.StudentGrade != nil {
		add("student_grade", *upd.StudentGrade)
	}
	if upd.StudentLevel != nil {
		add("student_level", *upd.StudentLevel)
	}
	if upd.GradeScore != nil {
		add("grade_score", *upd.GradeScore)
	}
	if upd.Subjects != nil {
		add("subjects", upd.Subjects)
	}
	if upd.TeacherType != nil {
		add("teacher_type", *upd.TeacherType)
	}
	if upd.TeacherGender != nil {
		add("teacher_gender", *upd.TeacherGender)
	}
	if upd.OrderTags != nil {
		add("order_tags", upd.OrderTags)
	}
	if upd.District != nil {
		add("district", *upd.District)
	}
	if upd.City != nil {
		add("city", *upd.City)
	}
	if upd.Address != nil {
		add("address", *upd.Address)
	}
	if upd.TutoringTime != nil {
		add("tutoring_time", *upd.TutoringTime)
	}
	if upd.Salary != nil {
		add("salary", *upd.Salary)
	}
	if upd.RequirementDesc != nil {
		add("requirement_desc", *upd.RequirementDesc)
	}
	if upd.IsVisible != nil {
		add("is_visible", *upd.IsVisible)
	}
	if len(sets) == 0 {
		return domain.ErrEmptyUpdate
	}

	add("updated_by", staffID)
	add("updated_at", at)

	stmt := fmt.Sprintf(`
UPDATE tutor_orders
SET %s
WHERE id = $%d AND NOT is_deleted`, strings.Join(sets, ", "), len(args)+1)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// SoftDelete flags an order deleted. Deleting an already-deleted or missing
// order affects zero rows and reports ErrOrderNotFound, not a store failure.
func (r *OrderRepository) SoftDelete(ctx context.Context, id, staffID int64, at time.Time) error {
	const stmt = `
UPDATE tutor_orders
SET is_deleted = TRUE, deleted_by = $2, deleted_at = $3
WHERE id = $1 AND NOT is_deleted`

	tag, err := r.pool.Exec(ctx, stmt, id, staffID, at)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// MarkFulfilled transitions an order to fulfilled, stamping the deal time and
// the resolving teacher and staff.
func (r *OrderRepository) MarkFulfilled(ctx context.Context, id, teacherID, staffID int64, at time.Time) error {
	const stmt = `
UPDATE tutor_orders
SET status = $2, deal_time = $3, deal_teacher_id = $4, deal_staff_id = $5,
    updated_by = $5, updated_at = $3
WHERE id = $1 AND NOT is_deleted`

	tag, err := r.pool.Exec(ctx, stmt, id, domain.StatusFulfilled, at, teacherID, staffID)
	if err != nil {
		return fmt.Errorf("mark order fulfilled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// MarkUnfulfilled reopens an order, clearing every deal field.
func (r *OrderRepository) MarkUnfulfilled(ctx context.Context, id, staffID int64, at time.Time) error {
	const stmt = `
UPDATE tutor_orders
SET status = $2, deal_time = NULL, deal_teacher_id = NULL, deal_staff_id = NULL,
    updated_by = $3, updated_at = $4
WHERE id = $1 AND NOT is_deleted`

	tag, err := r.pool.Exec(ctx, stmt, id, domain.StatusUnfulfilled, staffID, at)
	if err != nil {
		return fmt.Errorf("mark order unfulfilled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// List runs the manager listing for the given query.
func (r *OrderRepository) List(ctx context.Context, q domain.ListQuery) (domain.ListResult, error) {
	return composeListing(ViewManager, q).Execute(ctx, r.pool)
}

// TeacherList runs the restricted listing; gating to visible unfulfilled live
// orders is forced by the composer regardless of q.
func (r *OrderRepository) TeacherList(ctx context.Context, q domain.ListQuery) (domain.ListResult, error) {
	return composeListing(ViewTeacher, q).Execute(ctx, r.pool)
}

// composeListing turns a normalized listing request into a composer. Catalog
// fields are applied in catalog order so generated SQL is deterministic for
// a given query.
func composeListing(view View, q domain.ListQuery) Composer {
	c := NewComposer(view).WithDefaultGating(q.IncludeDeleted)
	for _, field := range domain.FilterFields() {
		if values, ok := q.Filters[field]; ok {
			c = c.WithFieldFilter(field, values...)
		}
	}
	return c.
		WithTagsFilter(q.Tags...).
		WithKeyword(q.Keyword).
		WithCity(q.City).
		Paginate(q.Page, q.PageSize)
}
