package storage

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// seedUsers are written when the registry is empty.
var seedUsers = []model.User{
	{ID: "u-daan", Name: "Daan"},
	{ID: "u-rosa", Name: "Rosa"},
}

// unknownUser is returned when the registry cannot name anyone.
var unknownUser = model.User{ID: "u-unknown", Name: "Unknown"}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Registry is the global list of users and the current selection.
type Registry struct {
	store Store
	log   *slog.Logger
}

// NewRegistry returns the users registry kept in s. A nil log uses
// slog.Default.
func NewRegistry(s Store, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{store: s, log: log}
}

// Init seeds the registry when empty and makes sure a current user is set.
func (r *Registry) Init() ([]model.User, error) {
	list := Load[[]model.User](r.store, UsersKey, nil, r.log)
	if len(list) == 0 {
		list = append([]model.User(nil), seedUsers...)
		if err := Save(r.store, UsersKey, list); err != nil {
			return nil, err
		}
		if err := Save(r.store, CurrentUserKey, list[0].ID); err != nil {
			return nil, err
		}
	}
	if r.currentID() == "" {
		if err := Save(r.store, CurrentUserKey, list[0].ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *Registry) currentID() string {
	return Load(r.store, CurrentUserKey, "", r.log)
}

// List returns the registered users.
func (r *Registry) List() []model.User {
	return Load(r.store, UsersKey, []model.User{}, r.log)
}

// Current returns the selected user, falling back to the first one.
func (r *Registry) Current() model.User {
	id := r.currentID()
	list := r.List()
	for _, u := range list {
		if u.ID == id {
			return u
		}
	}
	if len(list) > 0 {
		return list[0]
	}
	return unknownUser
}

// SetCurrent selects the user with the given id.
func (r *Registry) SetCurrent(id string) error {
	for _, u := range r.List() {
		if u.ID == id {
			return Save(r.store, CurrentUserKey, id)
		}
	}
	return fmt.Errorf("unknown user %q", id)
}

// Add registers a user, prepends it to the list and selects it.
func (r *Registry) Add(name, email string) (model.User, error) {
	name = strings.TrimSpace(name)
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	if name == "" {
		name = "New user"
	}
	u := model.User{ID: "u-" + slug, Name: name, Email: strings.TrimSpace(email)}

	list := r.List()
	for _, existing := range list {
		if existing.ID == u.ID {
			return model.User{}, fmt.Errorf("user %q already exists", u.ID)
		}
	}
	if err := Save(r.store, UsersKey, append([]model.User{u}, list...)); err != nil {
		return model.User{}, err
	}
	if err := Save(r.store, CurrentUserKey, u.ID); err != nil {
		return model.User{}, err
	}
	r.log.Info("user added", slog.String("user", u.ID))
	return u, nil
}

// Remove drops a user from the registry. Data in its namespace stays.
// When the removed user was current, the first remaining user is selected.
// It returns the current user after removal.
func (r *Registry) Remove(id string) (model.User, error) {
	var kept []model.User
	for _, u := range r.List() {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if kept == nil {
		kept = []model.User{}
	}
	if err := Save(r.store, UsersKey, kept); err != nil {
		return model.User{}, err
	}
	if r.currentID() == id {
		fallback := seedUsers[0].ID
		if len(kept) > 0 {
			fallback = kept[0].ID
		}
		if err := Save(r.store, CurrentUserKey, fallback); err != nil {
			return model.User{}, err
		}
	}
	return r.Current(), nil
}
