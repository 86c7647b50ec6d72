package tag

import "time"

// DefaultCatalog is the reference hierarchy loaded at startup.
func DefaultCatalog(createdAt time.Time) []Tag {
	return []Tag{
		{ID: "sport-1", Type: TypeSport, Name: "Football", CreatedAt: createdAt},
		{ID: "sport-2", Type: TypeSport, Name: "Basketball", CreatedAt: createdAt},
		{ID: "sport-3", Type: TypeSport, Name: "Soccer", CreatedAt: createdAt},
		{ID: "league-1", Type: TypeLeague, Name: "NFL", ParentID: "sport-1", CreatedAt: createdAt},
		{ID: "league-2", Type: TypeLeague, Name: "NBA", ParentID: "sport-2", CreatedAt: createdAt},
		{ID: "league-3", Type: TypeLeague, Name: "Premier League", ParentID: "sport-3", CreatedAt: createdAt},
		{ID: "club-1", Type: TypeClub, Name: "Patriots", ParentID: "league-1", CreatedAt: createdAt},
		{ID: "club-2", Type: TypeClub, Name: "Lakers", ParentID: "league-2", CreatedAt: createdAt},
		{ID: "club-3", Type: TypeClub, Name: "Arsenal", ParentID: "league-3", CreatedAt: createdAt},
	}
}
