package mvvm

// StringValueModel wraps ValueModel[string]. Equality is content equality.
type StringValueModel struct {
	*ValueModel[string]
}

// NewStringValueModel creates a StringValueModel with the given initial value.
func NewStringValueModel(key string, initial string) *StringValueModel {
	return &StringValueModel{NewValueModel(key, initial)}
}

// IsEmpty reports whether the value is the empty string.
func (m *StringValueModel) IsEmpty() bool {
	return m.Value() == ""
}

// BoolValueModel wraps ValueModel[bool].
type BoolValueModel struct {
	*ValueModel[bool]
}

// NewBoolValueModel creates a BoolValueModel with the given initial value.
func NewBoolValueModel(key string, initial bool) *BoolValueModel {
	return &BoolValueModel{NewValueModel(key, initial)}
}

// IntValueModel wraps ValueModel[int].
type IntValueModel struct {
	*ValueModel[int]
}

// NewIntValueModel creates an IntValueModel with the given initial value.
func NewIntValueModel(key string, initial int) *IntValueModel {
	return &IntValueModel{NewValueModel(key, initial)}
}
