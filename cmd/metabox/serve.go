package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-metabox/components/datelocalizer"
	"github.com/goliatone/go-metabox/pkg/metabox"
	"github.com/goliatone/go-metabox/pkg/nonce"
	"github.com/goliatone/go-metabox/pkg/server"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the edit and save endpoints for every defined meta box",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.settings.Addr
			}
			srv, err := a.buildServer(cmd.Context())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr, a.settings.ShutdownGrace)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to METABOX_ADDR)")
	return cmd
}

func (a *app) buildServer(ctx context.Context) (*server.Server, error) {
	set, err := a.definitions()
	if err != nil {
		return nil, err
	}
	values, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	secret := a.settings.Secret
	if secret == "" {
		secret = uuid.NewString()
		a.logger.Warn("METABOX_SECRET not set, tokens will not survive a restart")
	}
	nonces, err := nonce.New([]byte(secret), nonce.WithTTL(a.settings.NonceTTL))
	if err != nil {
		return nil, codeError(2, "%s", err)
	}

	trusted := a.settings.TrustHTML
	locale := a.settings.Locale
	srv, err := server.New(
		server.WithLogger(a.logger),
		server.WithBasePath(a.settings.BasePath),
		server.WithTrustedHTML(func(*http.Request) bool { return trusted }),
		server.WithLocaleResolver(func(r *http.Request) string {
			if requested := r.URL.Query().Get("locale"); requested != "" {
				return requested
			}
			return locale
		}),
		server.WithLocalizer(
			datelocalizer.WithVerifier(nonces, ""),
			datelocalizer.WithLocale(a.settings.Locale),
			datelocalizer.WithDateFormat(a.settings.DateFormat),
		),
	)
	if err != nil {
		return nil, err
	}

	renderer, err := a.renderer()
	if err != nil {
		return nil, err
	}
	boxes, err := set.PrepareAll(
		metabox.WithLogger(a.logger),
		metabox.WithRenderer(renderer),
		metabox.WithStore(values),
		metabox.WithNonces(nonces),
		metabox.WithLocalizeURL(srv.LocalizeURL()),
	)
	if err != nil {
		return nil, codeError(2, "%s", err)
	}
	for _, box := range boxes {
		if err := srv.Register(box); err != nil {
			return nil, err
		}
		a.logger.Info("registered", zap.String("meta_box", box.ID()), zap.Int("fields", len(box.Definition().Fields)))
	}
	return srv, nil
}
