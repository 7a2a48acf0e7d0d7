package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/flux/internal/config"
	"github.com/MrJamesThe3rd/flux/internal/localstore"
	"github.com/MrJamesThe3rd/flux/internal/metrics"
	"github.com/MrJamesThe3rd/flux/internal/remote"
	"github.com/MrJamesThe3rd/flux/internal/remote/docstore"
	"github.com/MrJamesThe3rd/flux/internal/remote/rowstore"
	"github.com/MrJamesThe3rd/flux/internal/remote/sheets"
	"github.com/MrJamesThe3rd/flux/internal/session"
)

// Bootstrap opens the local store and builds every adapter cfg enables. A
// backend that cannot be reached is logged and left not ready: the
// application always starts, local-only if need be.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*App, error) {
	store, err := localstore.Open(cfg.Local.Path, logger)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithLogger(logger),
		WithCloser(store.Close),
	}

	if recorder != nil {
		opts = append(opts, WithRecorder(recorder))
	}

	sess := resolveSession(cfg, logger)

	rowStore, closer := openRowStore(ctx, cfg, sess, logger)
	if closer != nil {
		opts = append(opts, WithCloser(closer))
	}

	var creds sheets.Credentials
	if cfg.GoogleEnabled() {
		creds = sheets.NewOAuthCredentials(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RefreshToken)
	}

	client := sheets.NewClient(cfg.Google.BaseURL, creds, &http.Client{Timeout: cfg.Server.Timeout})
	sheet := sheets.NewAdapter(client, cfg.Google.Tab, store.SpreadsheetID(), sheets.WithLogger(logger))

	logger.InfoContext(ctx, "backends configured",
		"rowstore_driver", cfg.RowStore.Driver,
		"rowstore_ready", rowStore.Ready(),
		"sheets_configured", sheet.Configured(),
		"spreadsheet", sheet.Spreadsheet(),
	)

	return New(store, rowStore, sheet, opts...), nil
}

func resolveSession(cfg *config.Config, logger *slog.Logger) *session.Session {
	if cfg.RowStore.AccessToken == "" {
		return session.FromOwner(cfg.RowStore.OwnerID)
	}

	sess, err := session.FromAccessToken(cfg.RowStore.AccessToken, []byte(cfg.RowStore.JWTSecret))
	if err != nil {
		logger.Warn("rejected row-store access token, continuing anonymous", "error", err)
		return nil
	}

	return sess
}

// openRowStore always returns an adapter; it is not ready when the driver is
// disabled or the connection failed.
func openRowStore(ctx context.Context, cfg *config.Config, sess *session.Session, logger *slog.Logger) (remote.Adapter, func() error) {
	switch cfg.RowStore.Driver {
	case config.DriverPostgres:
		db, err := rowstore.Open(ctx, cfg.ConnectionString())
		if err != nil {
			logger.WarnContext(ctx, "row store unreachable, continuing local-only", "driver", cfg.RowStore.Driver, "error", err)
			return rowstore.New(nil, cfg.RowStore.Table, sess), nil
		}

		store := rowstore.New(db, cfg.RowStore.Table, sess)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.WarnContext(ctx, "failed to ensure row-store schema", "error", err)
		}

		return store, db.Close

	case config.DriverMongo:
		client, coll, err := docstore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.RowStore.Table, logger)
		if err != nil {
			logger.WarnContext(ctx, "row store unreachable, continuing local-only", "driver", cfg.RowStore.Driver, "error", err)
			return docstore.New(nil, sess), nil
		}

		return docstore.New(coll, sess), func() error {
			if err := client.Disconnect(context.Background()); err != nil {
				return fmt.Errorf("disconnecting from MongoDB: %w", err)
			}

			return nil
		}
	}

	return rowstore.New(nil, cfg.RowStore.Table, sess), nil
}
