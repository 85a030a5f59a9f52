package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/skillsight/internal/auth"
	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/export"
	"github.com/spigell/skillsight/internal/logger"
	"github.com/spigell/skillsight/internal/secrets"
	"github.com/spigell/skillsight/internal/viewstate"
)

// services is everything a command needs, built from the config.
type services struct {
	logger     *zap.Logger
	config     *Config
	api        *backend.Client
	store      *auth.Store
	controller *viewstate.Controller
}

func newServices(ctx context.Context, confirm func(string) bool) (*services, error) {
	log, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
		File:  viper.GetString("log-file"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	api := backend.New(log.Named("backend"), config.API.BaseURL)
	if config.API.UserAgent != "" {
		api.UserAgent = config.API.UserAgent
	}
	if config.API.Timeout > 0 {
		api.HTTPClient.Timeout = config.API.Timeout
	}
	if rps := config.API.RequestsPerSecond; rps > 0 {
		api.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	provider, err := newIdentityProvider(ctx, config.Firebase, log)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, config.Export, log)
	if err != nil {
		return nil, err
	}

	var sharer export.Sharer
	if command := strings.Fields(config.Export.ShareCommand); len(command) > 0 {
		sharer = export.CommandSharer{Command: command[0], Args: command[1:]}
	}

	s := &services{
		logger: log,
		config: config,
		api:    api,
		store:  auth.NewStore(log.Named("auth"), provider),
		controller: viewstate.New(viewstate.Options{
			Logger:   log.Named("viewstate"),
			Backend:  api,
			Confirm:  confirm,
			Exporter: exporter,
			Sharing:  export.NewSharing(log.Named("share"), config.API.Origin, sharer),
		}),
	}

	return s, nil
}

func newIdentityProvider(ctx context.Context, cfg *FirebaseConfig, log *zap.Logger) (*auth.FirebaseProvider, error) {
	apiKey, err := secrets.LoadOptional(secrets.Source{
		Name:  "firebase api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "FIREBASE_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	provider, err := auth.NewFirebaseProvider(ctx, log.Named("firebase"), auth.FirebaseConfig{
		APIKey:    apiKey,
		ProjectID: cfg.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating identity provider: %w", err)
	}

	return provider, nil
}

func newExporter(ctx context.Context, cfg *ExportConfig, log *zap.Logger) (export.Exporter, error) {
	if cfg.S3 == nil || cfg.S3.Bucket == "" {
		return export.NewFileExporter(log.Named("export"), cfg.Dir), nil
	}

	accessKey, err := secrets.LoadOptional(secrets.Source{Name: "s3 access key", File: cfg.S3.AccessKeyFile, Env: "AWS_ACCESS_KEY_ID"})
	if err != nil {
		return nil, err
	}
	secretKey, err := secrets.LoadOptional(secrets.Source{Name: "s3 secret key", File: cfg.S3.SecretKeyFile, Env: "AWS_SECRET_ACCESS_KEY"})
	if err != nil {
		return nil, err
	}

	exporter, err := export.NewS3Exporter(ctx, log.Named("export"), export.S3Config{
		Bucket:    cfg.S3.Bucket,
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		Prefix:    cfg.S3.Prefix,
		AccessKey: accessKey,
		SecretKey: secretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 exporter: %w", err)
	}

	return exporter, nil
}

// adopt points the backend client and the controller at session.
func (s *services) adopt(session *auth.Session) {
	if session == nil {
		s.api.SetIDToken("")
		s.controller.SetUser("")
		return
	}

	s.api.SetIDToken(session.IDToken)
	s.controller.SetUser(session.ID)
}

// follow logs session changes until the store is closed. Sessions are
// applied by the caller through adopt, never from here.
func (s *services) follow() {
	events, _ := s.store.Subscribe()
	go func() {
		for ev := range events {
			if ev.Session == nil {
				s.logger.Debug("signed out")
				continue
			}
			logger.WithUser(s.logger, ev.Session.ID, ev.Session.Email).Debug("session active")
		}
	}()
}

func (s *services) close() {
	s.store.Close()
	_ = s.logger.Sync()
}
