package viewmodel

import (
	"github.com/vango-dev/viewmodel/pkg/entity"
	"github.com/vango-dev/viewmodel/pkg/mvvm"
)

// GroupKind is the entity kind used in diagnostic keys and metrics.
const GroupKind = "group"

// GroupVM is the bindable view of one group.
//
// ID and GroupType are read from the first snapshot and never change. Every
// other field is a value model refreshed by Update.
type GroupVM struct {
	base mvvm.BaseValueModel[*GroupVM]

	groupID   int32
	groupType entity.GroupType

	name              *mvvm.StringValueModel
	avatar            *AvatarValueModel
	isMember          *mvvm.BoolValueModel
	membersCount      *mvvm.IntValueModel
	isCanWriteMessage *mvvm.BoolValueModel
	ownerID           *mvvm.IntValueModel
	members           *mvvm.SetValueModel[int32, entity.GroupMember]
	theme             *mvvm.StringValueModel
	about             *mvvm.StringValueModel
}

// NewGroupVM creates the view-model from the group's first snapshot.
// Notifications are posted to d.
func NewGroupVM(g *entity.Group, d mvvm.Dispatcher, opts ...mvvm.ModelOption) *GroupVM {
	id := g.ID
	key := func(field string) string {
		return mvvm.FieldKey(GroupKind, id, field)
	}

	vm := &GroupVM{
		groupID:           id,
		groupType:         g.Type,
		name:              mvvm.NewStringValueModel(key("title"), g.Title),
		avatar:            NewAvatarValueModel(key("avatar"), g.Avatar),
		isMember:          mvvm.NewBoolValueModel(key("isMember"), g.IsMember),
		membersCount:      mvvm.NewIntValueModel(key("membersCount"), g.MembersCount),
		isCanWriteMessage: mvvm.NewBoolValueModel(key("can_write"), g.IsCanWrite),
		ownerID:           mvvm.NewIntValueModel(key("ownerId"), int(g.OwnerID)),
		members:           mvvm.NewSetValueModel(key("members"), g.Members, entity.MemberUID),
		theme:             mvvm.NewStringValueModel(key("theme"), g.Topic),
		about:             mvvm.NewStringValueModel(key("about"), g.About),
	}
	vm.base.Init(GroupKind, vm, d, []mvvm.Field{
		vm.name,
		vm.avatar,
		vm.isMember,
		vm.membersCount,
		vm.isCanWriteMessage,
		vm.ownerID,
		vm.members,
		vm.theme,
		vm.about,
	}, opts...)
	return vm
}

// GroupCreator returns the constructor a Registry uses for groups.
func GroupCreator(d mvvm.Dispatcher, opts ...mvvm.ModelOption) mvvm.Creator[*entity.Group, *GroupVM] {
	return func(g *entity.Group) *GroupVM {
		return NewGroupVM(g, d, opts...)
	}
}

// GroupKey is the registry identity of a group snapshot.
func GroupKey(g *entity.Group) int32 {
	return g.ID
}

// GroupRegistry holds one GroupVM per group id.
type GroupRegistry = mvvm.Registry[int32, *entity.Group, *GroupVM]

// NewGroupRegistry creates a registry whose view-models post to d.
func NewGroupRegistry(d mvvm.Dispatcher, modelOpts []mvvm.ModelOption, opts ...mvvm.RegistryOption) *GroupRegistry {
	opts = append([]mvvm.RegistryOption{mvvm.WithKind(GroupKind)}, opts...)
	return mvvm.NewRegistry(GroupKey, GroupCreator(d, modelOpts...), opts...)
}

// Update refreshes every mutable field from g and schedules one
// notification when at least one of them changed. g must describe the same
// group the view-model was created for.
func (g *GroupVM) Update(s *entity.Group) {
	g.base.Commit(mvvm.Changed(
		g.name.Change(s.Title),
		g.avatar.Change(s.Avatar),
		g.membersCount.Change(s.MembersCount),
		g.isMember.Change(s.IsMember),
		g.isCanWriteMessage.Change(s.IsCanWrite),
		g.theme.Change(s.Topic),
		g.about.Change(s.About),
		g.members.ChangeItems(s.Members),
		g.ownerID.Change(int(s.OwnerID)),
	))
}

// Subscribe registers l and calls it once with the current state.
func (g *GroupVM) Subscribe(l mvvm.ModelChangedListener[*GroupVM]) error {
	return g.base.Subscribe(l)
}

// SubscribeNotify registers l; the initial call happens only if notify is set.
func (g *GroupVM) SubscribeNotify(l mvvm.ModelChangedListener[*GroupVM], notify bool) error {
	return g.base.SubscribeNotify(l, notify)
}

// Unsubscribe removes l.
func (g *GroupVM) Unsubscribe(l mvvm.ModelChangedListener[*GroupVM]) {
	g.base.Unsubscribe(l)
}

// Listeners returns the number of subscribed listeners.
func (g *GroupVM) Listeners() int {
	return g.base.Listeners()
}

// Fields returns every value model for diagnostics.
func (g *GroupVM) Fields() []mvvm.Field {
	return g.base.Fields()
}

// ID returns the group id.
func (g *GroupVM) ID() int32 {
	return g.groupID
}

// GroupType returns the group type.
func (g *GroupVM) GroupType() entity.GroupType {
	return g.groupType
}

// Name returns the title model.
func (g *GroupVM) Name() *mvvm.StringValueModel {
	return g.name
}

// Avatar returns the avatar model.
func (g *GroupVM) Avatar() *AvatarValueModel {
	return g.avatar
}

// IsMember returns the membership model.
func (g *GroupVM) IsMember() *mvvm.BoolValueModel {
	return g.isMember
}

// MembersCount returns the members count model.
func (g *GroupVM) MembersCount() *mvvm.IntValueModel {
	return g.membersCount
}

// IsCanWriteMessage reports whether the current user may post.
func (g *GroupVM) IsCanWriteMessage() *mvvm.BoolValueModel {
	return g.isCanWriteMessage
}

// OwnerID returns the owner user id model.
func (g *GroupVM) OwnerID() *mvvm.IntValueModel {
	return g.ownerID
}

// Members returns the member set model.
func (g *GroupVM) Members() *mvvm.SetValueModel[int32, entity.GroupMember] {
	return g.members
}

// Theme returns the topic model.
func (g *GroupVM) Theme() *mvvm.StringValueModel {
	return g.theme
}

// About returns the description model.
func (g *GroupVM) About() *mvvm.StringValueModel {
	return g.about
}
