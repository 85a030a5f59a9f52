package cmd

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/skillsight/internal/auth"
	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/export"
	"github.com/spigell/skillsight/internal/upload"
	"github.com/spigell/skillsight/internal/viewstate"
)

func TestGetConfigDefaults(t *testing.T) {
	t.Setenv("SKILLSIGHT_API_BASE_URL", "")
	t.Setenv("VITE_API_BASE_URL", "")

	cfg, err := getConfig()
	require.NoError(t, err)

	assert.Equal(t, backend.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "http://localhost:5173", cfg.API.Origin)
	assert.Equal(t, upload.DefaultMaxBytes, cfg.Upload.MaxBytes)
	require.NotNil(t, cfg.Firebase)
	require.NotNil(t, cfg.Export.S3)
	assert.Equal(t, "auto", cfg.Export.S3.Region)
}

func TestGetConfigBaseURLFromEnv(t *testing.T) {
	t.Setenv("SKILLSIGHT_API_BASE_URL", "")
	t.Setenv("VITE_API_BASE_URL", "https://api.skillsight.test")

	cfg, err := getConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://api.skillsight.test", cfg.API.BaseURL)

	t.Setenv("SKILLSIGHT_API_BASE_URL", "https://override.test")

	cfg, err = getConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://override.test", cfg.API.BaseURL)
}

func TestNewExporterWithoutBucket(t *testing.T) {
	exporter, err := newExporter(context.Background(), &ExportConfig{Dir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &export.FileExporter{}, exporter)

	exporter, err = newExporter(context.Background(), &ExportConfig{S3: &S3Config{Region: "auto"}}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &export.FileExporter{}, exporter)
}

func TestPrintHistory(t *testing.T) {
	tests := []struct {
		name   string
		output string
		board  viewstate.Dashboard
		want   []string
	}{
		{
			name:   "empty",
			output: outputText,
			want:   []string{"No analyses yet."},
		},
		{
			name:   "text",
			output: outputText,
			board: viewstate.Dashboard{
				Total: 2,
				Summaries: backend.Summaries{
					{ID: "12", Date: "2024-05-02", JobTitle: "Data Scientist", MatchPercentage: 72},
					{ID: "13", Date: "2024-05-03", JobTitle: "DevOps Engineer", MatchPercentage: 50.5},
				},
			},
			want: []string{"2 analyses, average match 0%", "12", "Data Scientist (2024-05-02, 72%)", "DevOps Engineer (2024-05-03, 50.5%)"},
		},
		{
			name:   "json",
			output: outputJSON,
			board: viewstate.Dashboard{
				Summaries: backend.Summaries{{ID: "12", JobTitle: "Data Scientist"}},
			},
			want: []string{`"jobTitle": "Data Scientist"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printHistory(&buf, tt.output, tt.board))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestInterrupted(t *testing.T) {
	assert.ErrorIs(t, interrupted(promptui.ErrInterrupt), errExit)
	assert.ErrorIs(t, interrupted(promptui.ErrEOF), errExit)
	assert.NoError(t, interrupted(nil))

	other := errors.New("boom")
	assert.Equal(t, other, interrupted(other))
}

type stubProvider struct {
	mu     sync.Mutex
	listen func(*auth.Session)
}

func (p *stubProvider) SignInWithPassword(context.Context, string, string) error { return nil }
func (p *stubProvider) SignUp(context.Context, string, string) error             { return nil }
func (p *stubProvider) SignInWithIdP(context.Context, string, string) error      { return nil }
func (p *stubProvider) SignOut(context.Context) error                            { return nil }
func (p *stubProvider) SendPasswordReset(context.Context, string) error          { return nil }

func (p *stubProvider) Listen(fn func(*auth.Session)) func() {
	p.mu.Lock()
	p.listen = fn
	p.mu.Unlock()
	fn(nil)
	return func() {}
}

func (p *stubProvider) publish(session *auth.Session) {
	p.mu.Lock()
	fn := p.listen
	p.mu.Unlock()
	fn(session)
}

func TestFollowDoesNotApplySessions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	provider := &stubProvider{}
	api := backend.New(log, "http://127.0.0.1:0")
	s := &services{
		logger:     log,
		api:        api,
		store:      auth.NewStore(log, provider),
		controller: viewstate.New(viewstate.Options{Logger: log, Backend: api}),
	}
	t.Cleanup(s.store.Close)

	s.follow()
	s.adopt(auth.NewSession("u2", "Ada", "ada@example.com", "token"))

	// A late sign out event must not undo the session the loop adopted.
	provider.publish(nil)
	require.Eventually(t, func() bool {
		return logs.FilterMessage("signed out").Len() == 1
	}, time.Second, time.Millisecond)

	assert.Equal(t, "u2", s.controller.User())
}

type deleteBackend struct {
	mu      sync.Mutex
	failed  chan struct{}
	deleted []string
}

func (b *deleteBackend) DashboardStats(context.Context, string) (*backend.DashboardStats, error) {
	return &backend.DashboardStats{
		TotalAnalyses:  3,
		RecentAnalyses: backend.Summaries{{ID: "1"}, {ID: "2"}, {ID: "3"}},
	}, nil
}

func (b *deleteBackend) GetAnalysis(context.Context, string) (*backend.AnalysisDetail, error) {
	return nil, backend.ErrNotFound
}

func (b *deleteBackend) DeleteAnalysis(ctx context.Context, id string) error {
	if id == "1" {
		close(b.failed)
		return &backend.ServerError{Status: 502}
	}

	<-b.failed
	time.Sleep(20 * time.Millisecond)
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

func TestDeleteAllFinishesAfterAFailure(t *testing.T) {
	fb := &deleteBackend{failed: make(chan struct{})}
	c := viewstate.New(viewstate.Options{
		Logger:  zap.NewNop(),
		Backend: fb,
		Confirm: func(string) bool { return true },
	})
	c.SetUser("u1")
	require.NoError(t, c.LoadSummaries(context.Background()))

	err := deleteAll(context.Background(), c, []string{"1", "2", "3"})

	var serverErr *backend.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.ElementsMatch(t, []string{"2", "3"}, fb.deleted)
	assert.Equal(t, []string{"1"}, c.Dashboard().Summaries.IDs())
	assert.Equal(t, 1, c.Total())
}

func TestAnalyzeFailureListsRoles(t *testing.T) {
	err := &backend.ServerError{
		Status:         404,
		Message:        "Role 'Astronaut' not found.",
		AvailableRoles: []string{"Data Scientist", "DevOps Engineer"},
	}
	assert.Equal(t, "Role 'Astronaut' not found.\nAvailable roles: Data Scientist, DevOps Engineer", analyzeFailure(err))

	assert.Equal(t, "Boom", analyzeFailure(&backend.ServerError{Status: 500, Message: "Boom"}))
	assert.Equal(t, analyzeFailed, analyzeFailure(errors.New("decode failure")))
}
