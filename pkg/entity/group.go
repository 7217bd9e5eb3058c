// Package entity holds the immutable domain snapshots the view-models are
// built from. Values of these types are owned by the sync layer and must be
// treated as read-only.
package entity

import "fmt"

// GroupType classifies a group. It never changes for a given group.
type GroupType int

const (
	GroupTypeGroup GroupType = iota
	GroupTypeChannel
	GroupTypeOther
)

// String returns the lowercase name of the type.
func (t GroupType) String() string {
	switch t {
	case GroupTypeGroup:
		return "group"
	case GroupTypeChannel:
		return "channel"
	default:
		return "other"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t GroupType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *GroupType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "group", "":
		*t = GroupTypeGroup
	case "channel":
		*t = GroupTypeChannel
	case "other":
		*t = GroupTypeOther
	default:
		return fmt.Errorf("entity: unknown group type %q", text)
	}
	return nil
}

// GroupMember is one member of a group. Set identity is UID.
type GroupMember struct {
	UID             int32 `json:"uid"`
	InviterUID      int32 `json:"inviterUid"`
	Date            int64 `json:"date"`
	IsAdministrator bool  `json:"isAdministrator"`
}

// Group is a snapshot of a group as known to the sync layer.
type Group struct {
	ID           int32         `json:"id"`
	Type         GroupType     `json:"type"`
	Title        string        `json:"title"`
	Avatar       *Avatar       `json:"avatar,omitempty"`
	IsMember     bool          `json:"isMember"`
	IsCanWrite   bool          `json:"isCanWrite"`
	MembersCount int           `json:"membersCount"`
	OwnerID      int32         `json:"ownerId"`
	Topic        string        `json:"topic,omitempty"`
	About        string        `json:"about,omitempty"`
	Members      []GroupMember `json:"members,omitempty"`
}

// MemberUID is the set key of a member.
func MemberUID(m GroupMember) int32 {
	return m.UID
}
