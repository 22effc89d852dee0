package domain

import "time"

type OrderStatus string

const (
	StatusUnfulfilled OrderStatus = "unfulfilled"
	StatusFulfilled   OrderStatus = "fulfilled"
)

// Order is a tutoring request being matched to a teacher. Deal fields are
// populated only once the order transitions to fulfilled.
type Order struct {
	ID        int64
	Code      string
	Status    OrderStatus
	IsVisible bool
	IsDeleted bool

	StudentGender string
	TeachingType  string
	StudentGrade  string
	StudentLevel  string
	GradeScore    string

	Subjects      []string
	TeacherType   string
	TeacherGender string
	OrderTags     []string

	District string
	City     string
	Address  string

	TutoringTime    string
	Salary          string
	RequirementDesc string

	CreatedBy int64
	UpdatedBy *int64
	DeletedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	DealTeacherID *int64
	DealStaffID   *int64
	DealTime      *time.Time

	// Display names resolved through joins; only set on read paths.
	CreatedByName   *string
	UpdatedByName   *string
	DeletedByName   *string
	DealTeacherName *string
	DealStaffName   *string
}

// OrderUpdate carries a partial update: nil fields are left untouched.
type OrderUpdate struct {
	StudentGender   *string
	TeachingType    *string
	StudentGrade    *string
	StudentLevel    *string
	GradeScore      *string
	Subjects        []string
	TeacherType     *string
	TeacherGender   *string
	OrderTags       []string
	District        *string
	City            *string
	Address         *string
	TutoringTime    *string
	Salary          *string
	RequirementDesc *string
	IsVisible       *bool
}

// IsEmpty reports whether the update would touch no columns.
func (u OrderUpdate) IsEmpty() bool {
	return u.StudentGender == nil && u.TeachingType == nil && u.StudentGrade == nil &&
		u.StudentLevel == nil && u.GradeScore == nil && u.Subjects == nil &&
		u.TeacherType == nil && u.TeacherGender == nil && u.OrderTags == nil &&
		u.District == nil && u.City == nil && u.Address == nil &&
		u.TutoringTime == nil && u.Salary == nil && u.RequirementDesc == nil &&
		u.IsVisible == nil
}

// ListQuery describes one listing request after parameter normalization.
// Filters is keyed by catalog field name; unknown keys are ignored downstream.
type ListQuery struct {
	Filters        map[string][]string
	Tags           []string
	Keyword        string
	City           string
	IncludeDeleted bool
	Page           int
	PageSize       int
}

// ListResult pairs one page of rows with the total match count.
type ListResult struct {
	Orders []Order
	Total  int
}
