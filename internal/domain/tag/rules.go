package tag

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrUnknownType   = errors.New("unknown tag type")
	ErrInvalidParent = errors.New("invalid tag parent")
	ErrDuplicateTag  = errors.New("duplicate tag id")
	ErrTagNotFound   = errors.New("tag not found")
)

// ValidateCatalog checks every tag's type and that parents exist and sit
// exactly one level above their children.
func ValidateCatalog(tags []Tag) error {
	byID := make(map[string]Tag, len(tags))
	for _, t := range tags {
		if t.ID == "" {
			return fmt.Errorf("tag id is required")
		}
		if t.Name == "" {
			return fmt.Errorf("tag name is required: %s", t.ID)
		}
		if _, ok := AllTypes[t.Type]; !ok {
			return fmt.Errorf("%w: %s (%s)", ErrUnknownType, t.Type, t.ID)
		}
		if _, exists := byID[t.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateTag, t.ID)
		}
		byID[t.ID] = t
	}

	for _, t := range tags {
		parentType, needsParent := t.Type.ParentType()
		if !needsParent {
			if t.ParentID != "" {
				return fmt.Errorf("%w: %s tag %s cannot have a parent", ErrInvalidParent, t.Type, t.ID)
			}
			continue
		}

		parent, ok := byID[t.ParentID]
		if !ok {
			return fmt.Errorf("%w: %s references missing parent %q", ErrInvalidParent, t.ID, t.ParentID)
		}
		if parent.Type != parentType {
			return fmt.Errorf("%w: %s parent %s is %s, want %s", ErrInvalidParent, t.ID, parent.ID, parent.Type, parentType)
		}
	}

	return nil
}

// FilterByType returns tags of type t whose parent equals parentID. An empty
// parentID selects tags without a parent.
func FilterByType(tags []Tag, t Type, parentID string) []Tag {
	out := make([]Tag, 0)
	for _, item := range tags {
		if item.Type == t && item.ParentID == parentID {
			out = append(out, item)
		}
	}
	return out
}

// Ancestors returns the chain from the root down to and including target.
func Ancestors(catalog map[string]Tag, target Tag) ([]Tag, error) {
	chain := []Tag{target}
	current := target
	for current.ParentID != "" {
		parent, ok := catalog[current.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTagNotFound, current.ParentID)
		}
		chain = append(chain, parent)
		current = parent
	}
	slices.Reverse(chain)
	return chain, nil
}

// Select returns the user's selection after choosing target. The result is
// always a single chain: target's ancestors are selected implicitly, held
// tags under target are kept, and every other tag is dropped.
func Select(current []UserTag, catalog map[string]Tag, userID string, target Tag, now time.Time) ([]UserTag, error) {
	chain, err := Ancestors(catalog, target)
	if err != nil {
		return nil, err
	}

	held := make(map[string]UserTag, len(current))
	for _, ut := range current {
		held[ut.TagID] = ut
	}

	out := make([]UserTag, 0, len(chain))
	for _, t := range chain {
		if existing, ok := held[t.ID]; ok {
			existing.Tag = t
			out = append(out, existing)
			continue
		}
		out = append(out, UserTag{
			UserID:    userID,
			TagID:     t.ID,
			CreatedAt: now,
			Tag:       t,
		})
	}

	for _, ut := range current {
		if ut.TagID != target.ID && descendsFrom(catalog, ut.TagID, target.ID) {
			out = append(out, ut)
		}
	}
	return out, nil
}

func descendsFrom(catalog map[string]Tag, tagID, ancestorID string) bool {
	t, ok := catalog[tagID]
	for ok && t.ParentID != "" {
		if t.ParentID == ancestorID {
			return true
		}
		t, ok = catalog[t.ParentID]
	}
	return false
}

// Remove drops tagID from the selection. With cascade, every selected tag
// below it in the hierarchy goes too.
func Remove(current []UserTag, tagID string, cascade bool) []UserTag {
	var removed *Tag
	for _, ut := range current {
		if ut.TagID == tagID {
			t := ut.Tag
			removed = &t
			break
		}
	}
	if removed == nil {
		return slices.Clone(current)
	}

	out := make([]UserTag, 0, len(current))
	for _, ut := range current {
		if ut.TagID == tagID {
			continue
		}
		if cascade && ut.Tag.Type.Level() > removed.Type.Level() {
			continue
		}
		out = append(out, ut)
	}
	return out
}

// ResolvePreferences picks the selected tag per type.
func ResolvePreferences(userTags []UserTag) Preferences {
	var prefs Preferences
	for _, ut := range userTags {
		t := ut.Tag
		switch t.Type {
		case TypeSport:
			if prefs.Sport == nil {
				prefs.Sport = &t
			}
		case TypeLeague:
			if prefs.League == nil {
				prefs.League = &t
			}
		case TypeClub:
			if prefs.Club == nil {
				prefs.Club = &t
			}
		}
	}
	prefs.HasCompletePreferences = prefs.Sport != nil && prefs.League != nil && prefs.Club != nil
	return prefs
}

// CountByType reports how many selected tags have type t.
func CountByType(userTags []UserTag, t Type) int {
	n := 0
	for _, ut := range userTags {
		if ut.Tag.Type == t {
			n++
		}
	}
	return n
}
