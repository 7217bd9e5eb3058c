package viewmodel

import (
	"cmp"
	"slices"

	"github.com/vango-dev/viewmodel/pkg/entity"
)

// GroupView is a point-in-time copy of a GroupVM, used for inspection and
// for streaming state to debug clients.
type GroupView struct {
	ID           int32                `json:"id"`
	Type         entity.GroupType     `json:"type"`
	Title        string               `json:"title"`
	Avatar       *entity.Avatar       `json:"avatar,omitempty"`
	IsMember     bool                 `json:"isMember"`
	MembersCount int                  `json:"membersCount"`
	CanWrite     bool                 `json:"canWrite"`
	OwnerID      int                  `json:"ownerId"`
	Theme        string               `json:"theme,omitempty"`
	About        string               `json:"about,omitempty"`
	Members      []entity.GroupMember `json:"members"`
}

// View copies the current field values. Members are ordered by UID.
func (g *GroupVM) View() GroupView {
	members := g.members.Value().Items()
	slices.SortFunc(members, func(a, b entity.GroupMember) int {
		return cmp.Compare(a.UID, b.UID)
	})

	return GroupView{
		ID:           g.groupID,
		Type:         g.groupType,
		Title:        g.name.Value(),
		Avatar:       g.avatar.Value(),
		IsMember:     g.isMember.Value(),
		MembersCount: g.membersCount.Value(),
		CanWrite:     g.isCanWriteMessage.Value(),
		OwnerID:      g.ownerID.Value(),
		Theme:        g.theme.Value(),
		About:        g.about.Value(),
		Members:      members,
	}
}

// FieldValues maps every diagnostic key to its current value.
func (g *GroupVM) FieldValues() map[string]any {
	fields := g.Fields()
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Key()] = f.Any()
	}
	return out
}
