package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/phonecheck/internal/client"
	"github.com/alfredjeanlab/phonecheck/internal/config"
	"github.com/alfredjeanlab/phonecheck/internal/store"
	"github.com/alfredjeanlab/phonecheck/internal/store/firestore"
	"github.com/alfredjeanlab/phonecheck/internal/store/memory"
	"github.com/alfredjeanlab/phonecheck/internal/store/postgres"
	"github.com/alfredjeanlab/phonecheck/internal/store/sqlite"
)

// openStore opens the backend selected by databaseURL.
func openStore(ctx context.Context, databaseURL string) (store.StatusStore, error) {
	backend, err := config.Backend(databaseURL)
	if err != nil {
		return nil, err
	}
	switch backend {
	case config.BackendPostgres:
		s, err := postgres.New(databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := sqlite.New(sqlitePath(databaseURL))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendFirestore:
		u, err := url.Parse(databaseURL)
		if err != nil {
			return nil, err
		}
		s, err := firestore.New(ctx, u.Host)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unsupported backend %q", backend)
}

// sqlitePath turns sqlite:///abs/file.db and sqlite://rel.db into a path.
func sqlitePath(databaseURL string) string {
	return strings.TrimPrefix(databaseURL, "sqlite://")
}

// statusStore returns the store an operator session talks to: a directly
// attached database when PHONECHECK_DATABASE_URL is set, else the status
// service.
func statusStore(ctx context.Context) (store.StatusStore, error) {
	if session.DatabaseURL != "" {
		s, err := openStore(ctx, session.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening status store: %w", err)
		}
		return s, nil
	}
	return serviceClient(), nil
}

func serviceClient() *client.HTTPClient {
	return client.NewHTTPClient(session.ServerURL, session.Token).WithOperator(operator)
}
