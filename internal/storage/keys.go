package storage

import "strings"

// Prefix is the domain prefix of every key written by fdt.
const Prefix = "fdt"

// Logical names of the per-user key family.
const (
	Workday        = "workday.v1"
	TripsToday     = "trips.today"
	ActiveTrip     = "trip.active"
	Receipts       = "receipts.v1"
	DayLog         = "daylog.v1"
	ProjectCurrent = "project.current"
	OutlookSeen    = "outlook.seen.v1"
)

// Global keys that are not bound to a user.
const (
	UsersKey       = Prefix + ".users.v1"
	CurrentUserKey = Prefix + ".user.current.v1"
)

// Key derives the storage key for (prefix, userID, logical).
func Key(prefix, userID, logical string) string {
	return prefix + "." + userID + "." + logical
}

// Namespace binds key derivation to one user.
type Namespace struct {
	Prefix string
	UserID string
}

// For returns the namespace of userID under the default prefix.
func For(userID string) Namespace {
	return Namespace{Prefix: Prefix, UserID: userID}
}

// Key returns the key of a logical entity in this namespace.
func (n Namespace) Key(logical string) string {
	return Key(n.Prefix, n.UserID, logical)
}

// Keys returns every key of the namespace's family.
func (n Namespace) Keys() []string {
	names := []string{Workday, TripsToday, ActiveTrip, Receipts, DayLog, ProjectCurrent}
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = n.Key(name)
	}
	return out
}

// Owns reports whether key belongs to this namespace.
func (n Namespace) Owns(key string) bool {
	return strings.HasPrefix(key, n.Prefix+"."+n.UserID+".")
}
