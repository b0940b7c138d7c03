package transfertax

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x"
)

// RegisterQuery registers the configuration query under the /transfertaxconf
// path.
func RegisterQuery(qr weave.QueryRouter) {
	qr.Register("/transfertaxconf", confQuery{})
}

func RegisterRoutes(r weave.Registry, auth x.Authenticator) {
	r = migration.SchemaMigratingRegistry(packageName, r)

	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler(packageName, &Configuration{}, auth, migration.CurrentAdmin))
}

type confQuery struct{}

var _ weave.QueryHandler = confQuery{}

// Query returns an empty result when the tax is not configured.
func (confQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	conf, err := loadConf(db)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
	raw, err := conf.Marshal()
	if err != nil {
		return nil, err
	}
	return []weave.Model{weave.Pair([]byte(packageName), raw)}, nil
}
