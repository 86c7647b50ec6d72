package profile

import (
	"strings"
	"time"
)

const (
	WalletProviderCustodial = "custodial"
	WalletProviderExternal  = "external"
)

type Profile struct {
	ID             string
	UserID         string
	Email          string
	DisplayName    string
	FirstName      string
	LastName       string
	Country        string
	WalletAddress  string
	WalletProvider string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Name is what the leaderboard shows for the profile.
func (p Profile) Name() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	if full := strings.TrimSpace(p.FirstName + " " + p.LastName); full != "" {
		return full
	}
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	return p.UserID
}

func (p Profile) HasWallet() bool {
	return p.WalletAddress != ""
}

// Update carries optional profile changes; nil fields are left untouched.
type Update struct {
	DisplayName *string
	FirstName   *string
	LastName    *string
	Country     *string
}

func (p Profile) Apply(u Update, now time.Time) Profile {
	if u.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*u.DisplayName)
	}
	if u.FirstName != nil {
		p.FirstName = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		p.LastName = strings.TrimSpace(*u.LastName)
	}
	if u.Country != nil {
		p.Country = strings.TrimSpace(*u.Country)
	}
	p.UpdatedAt = now
	return p
}
