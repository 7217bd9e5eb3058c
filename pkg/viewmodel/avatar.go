package viewmodel

import (
	"github.com/vango-dev/viewmodel/pkg/entity"
	"github.com/vango-dev/viewmodel/pkg/mvvm"
)

// AvatarValueModel holds an avatar with structural equality: a fresh
// *entity.Avatar describing the same files is not a change.
type AvatarValueModel struct {
	*mvvm.ValueModel[*entity.Avatar]
}

// NewAvatarValueModel creates an AvatarValueModel with the given initial value.
func NewAvatarValueModel(key string, initial *entity.Avatar) *AvatarValueModel {
	m := mvvm.NewValueModel(key, initial).WithEquals(func(a, b *entity.Avatar) bool {
		return a.Equal(b)
	})
	return &AvatarValueModel{m}
}
