// Package validation holds the pure rules shared by the team, request and
// submission services.
package validation

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dimitrije/teamforge-api/internal/apperror"
	"github.com/dimitrije/teamforge-api/internal/models"
	"github.com/google/uuid"
)

const (
	// RequestTTL is the longest a join request or invitation stays open.
	RequestTTL = 24 * time.Hour

	MinMemberLimit = 1
	MaxMemberLimit = 10
)

var (
	ErrInvalidTeamName = apperror.New(apperror.KindValidation, "INVALID_TEAM_NAME",
		"team name must be 1-16 characters of lowercase letters, underscores or hyphens")
	ErrInvalidURL = apperror.New(apperror.KindValidation, "INVALID_URL",
		"submission url must be an absolute http or https url")
)

var teamNamePattern = regexp.MustCompile(`^[a-z_-]{1,16}$`)

// NormalizeTeamName trims and lowercases a team name. Uniqueness is checked on
// the normalised form.
func NormalizeTeamName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateTeamName checks an already normalised name.
func ValidateTeamName(name string) error {
	if !teamNamePattern.MatchString(name) {
		return ErrInvalidTeamName
	}
	return nil
}

// RequestExpiry is min(now+24h, hackathonStart): a request outlives neither a
// full day nor the start of the hackathon.
func RequestExpiry(now, hackathonStart time.Time) time.Time {
	expiry := now.Add(RequestTTL)
	if hackathonStart.Before(expiry) {
		return hackathonStart
	}
	return expiry
}

func IsExpired(req *models.TeamRequest, now time.Time) bool {
	return !now.Before(req.ExpiresAt)
}

// ExpiryReason explains why a request lapsed.
func ExpiryReason(now, hackathonStart time.Time) string {
	if !now.Before(hackathonStart) {
		return models.ExpiryReasonHackathonStart
	}
	return models.ExpiryReasonTime
}

func ClampMemberLimit(n int) int {
	return max(MinMemberLimit, min(n, MaxMemberLimit))
}

// CanSendRequests reports whether a participant may ask to join a team.
func CanSendRequests(u *models.User) bool {
	return u.CanSendRequests && !u.HasTeam() && u.Role == models.RoleMember
}

// CanReceiveInvites reports whether a participant may be invited.
func CanReceiveInvites(u *models.User) bool {
	return u.CanReceiveRequests && !u.HasTeam() && u.Role != models.RoleAdmin
}

// CanReceiveRequests reports whether a team is open to join requests.
func CanReceiveRequests(t *models.Team) bool {
	return t.CanReceiveRequests && !t.IsFinalized && !t.IsFull()
}

// CanLeave reports whether userID may leave t. The owner may only leave once
// nobody else is on the roster.
func CanLeave(t *models.Team, userID uuid.UUID) bool {
	if t.IsFinalized || !t.HasMember(userID) {
		return false
	}
	if t.IsOwner(userID) {
		return len(t.Members) == 1
	}
	return true
}

// ValidateSubmissionURL checks syntax only; reachability is the caller's job.
func ValidateSubmissionURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL
	}
	if u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// InWindow reports whether now lies in [start, end].
func InWindow(now, start, end time.Time) bool {
	return !now.Before(start) && !now.After(end)
}
