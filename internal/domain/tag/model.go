package tag

import "time"

// Type is a level of the sport -> league -> club hierarchy.
type Type string

const (
	TypeSport  Type = "sport"
	TypeLeague Type = "league"
	TypeClub   Type = "club"
)

var AllTypes = map[Type]struct{}{
	TypeSport:  {},
	TypeLeague: {},
	TypeClub:   {},
}

func ParseType(raw string) (Type, bool) {
	t := Type(raw)
	_, ok := AllTypes[t]
	return t, ok
}

// ParentType returns the type a tag of this type must hang off.
func (t Type) ParentType() (Type, bool) {
	switch t {
	case TypeLeague:
		return TypeSport, true
	case TypeClub:
		return TypeLeague, true
	default:
		return "", false
	}
}

// Level is 0 for sport, 1 for league, 2 for club.
func (t Type) Level() int {
	switch t {
	case TypeSport:
		return 0
	case TypeLeague:
		return 1
	case TypeClub:
		return 2
	default:
		return -1
	}
}

type Tag struct {
	ID        string
	Type      Type
	Name      string
	ParentID  string
	CreatedAt time.Time
}

func (t Tag) IsRoot() bool {
	return t.ParentID == ""
}

// UserTag records one tag a user selected.
type UserTag struct {
	UserID    string
	TagID     string
	CreatedAt time.Time
	Tag       Tag
}

// Preferences is the user's resolved chain.
type Preferences struct {
	Sport                  *Tag
	League                 *Tag
	Club                   *Tag
	HasCompletePreferences bool
}
