package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/internal/profile"
	"github.com/hrygo/lifelog/store"
	"github.com/hrygo/lifelog/store/db/postgres"
	"github.com/hrygo/lifelog/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	case "postgres":
		return postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
}
