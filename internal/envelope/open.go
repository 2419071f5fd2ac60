package envelope

import (
	"context"
	"fmt"
	"io"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/database"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open builds the store selected by the envelope_store setting. The returned
// closer releases the backend's resources.
func Open(ctx context.Context, cm *utils.ConfigManager, logger *utils.LogsManager) (Store, io.Closer, error) {
	backend := cm.GetConfigWithDefault("envelope_store", "sqlite")
	logger.Debug(fmt.Sprintf("Using %s envelope store", backend), "envelope")

	switch backend {
	case "memory":
		return NewMemoryStore(), closerFunc(func() error { return nil }), nil

	case "keyring":
		return NewKeyringStore(cm.GetConfigWithDefault("keyring_service", keyringService)), closerFunc(func() error { return nil }), nil

	case "postgres":
		dsn := cm.GetConfigWithDefault("postgres_dsn", "")
		if dsn == "" {
			return nil, nil, fmt.Errorf("envelope_store is postgres but postgres_dsn is empty")
		}
		store, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, closerFunc(func() error { store.Close(); return nil }), nil

	case "sqlite":
		db, err := database.NewSQLiteManager(cm, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteStore(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown envelope_store %q", backend)
	}
}
