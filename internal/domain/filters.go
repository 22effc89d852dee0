package domain

// FilterOption registers one filterable order attribute: its column name,
// display label, and the closed set of values it accepts.
type FilterOption struct {
	Field   string   `json:"field"`
	Label   string   `json:"label"`
	Options []string `json:"options"`
}

// OrderFilters is the full filter catalog, in display order. Read-only after
// package init.
var OrderFilters = []FilterOption{
	{
		Field:   "student_gender",
		Label:   "Student gender",
		Options: []string{"Male", "Female"},
	},
	{
		Field:   "teaching_type",
		Label:   "Teaching type",
		Options: []string{"One-to-one", "One-to-many"},
	},
	{
		Field: "student_grade",
		Label: "Student grade",
		Options: []string{
			"Kindergarten", "Primary school", "Junior high school", "Middle school",
			"Senior high school", "Freshman", "Sophomore", "Junior", "Other",
		},
	},
	{
		Field: "subjects",
		Label: "Subjects to be tutored",
		Options: []string{
			"Chinese", "Mathematics", "English", "Physics", "Chemistry",
			"Biology", "History", "Geography", "Politics",
		},
	},
	{
		Field:   "teacher_type",
		Label:   "Teacher type",
		Options: []string{"Full-time teacher", "985 student", "None"},
	},
	{
		Field:   "teacher_gender",
		Label:   "Teacher gender",
		Options: []string{"Male", "Female", "None"},
	},
	{
		Field: "district",
		Label: "District",
		Options: []string{
			"Nankai District", "Heping District", "Hexi District", "Hedong District",
			"Hebei District", "Hongqiao District", "Jinnan District", "Binhai New Area",
		},
	},
	{
		Field:   "student_level",
		Label:   "Student level",
		Options: []string{"Excellent", "Good", "Average", "Fail"},
	},
	{
		Field:   "is_visible",
		Label:   "Visible status",
		Options: []string{"Yes", "No"},
	},
	{
		Field:   "status",
		Label:   "Order status",
		Options: []string{string(StatusFulfilled), string(StatusUnfulfilled)},
	},
}

// adminOnlyFilters are catalog fields the restricted teacher view must not
// accept; the teacher listing forces its own values for them.
var adminOnlyFilters = map[string]bool{
	"is_visible": true,
	"status":     true,
}

// setValuedFields hold multiple values per row and filter with any-of
// membership rather than equality.
var setValuedFields = map[string]bool{
	"subjects":   true,
	"order_tags": true,
}

// FilterFields returns the catalog field names in catalog order.
func FilterFields() []string {
	fields := make([]string, 0, len(OrderFilters))
	for _, f := range OrderFilters {
		fields = append(fields, f.Field)
	}
	return fields
}

// TeacherFilters returns the catalog narrowed to fields the restricted view
// may filter on.
func TeacherFilters() []FilterOption {
	out := make([]FilterOption, 0, len(OrderFilters))
	for _, f := range OrderFilters {
		if adminOnlyFilters[f.Field] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FilterOptions returns the allowed values for a catalog field, or an empty
// slice for unknown fields.
func FilterOptions(field string) []string {
	for _, f := range OrderFilters {
		if f.Field == field {
			return f.Options
		}
	}
	return []string{}
}

// IsFilterField reports whether field is registered in the catalog.
func IsFilterField(field string) bool {
	for _, f := range OrderFilters {
		if f.Field == field {
			return true
		}
	}
	return false
}

// IsSetValuedField reports whether field filters via set membership.
func IsSetValuedField(field string) bool {
	return setValuedFields[field]
}
