package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillsight/internal/analysis"
	"github.com/spigell/skillsight/internal/auth"
	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/upload"
	"github.com/spigell/skillsight/internal/view"
	"github.com/spigell/skillsight/internal/viewstate"
)

const (
	PromptSignIn         = "Sign in"
	PromptSignUp         = "Create account"
	PromptGoogle         = "Sign in with Google"
	PromptForgotPassword = "Forgot password"
	PromptSelect         = "Select analysis"
	PromptViewResults    = "View full results"
	PromptDelete         = "Delete selected"
	PromptShare          = "Share"
	PromptExport         = "Export"
	PromptNewAnalysis    = "New analysis"
	PromptRefresh        = "Refresh"
	PromptSignOut        = "Sign out"
	PromptBack           = "Back"
	PromptExit           = "Exit"

	tabManualLabel = "Enter manually"
	tabResumeLabel = "Upload resume"

	analyzeFailed = "Failed to analyze skills. Please try again."
	uploadFailed  = "Failed to parse resume."
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive SkillSight session",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the interactive loop: sign in, then the dashboard until exit.
func run() {
	ctx := context.Background()

	s, err := newServices(ctx, confirm)
	if err != nil {
		log.Fatalf("starting: %s", err)
	}
	defer s.close()

	s.logger.Info("starting skillsight", zap.String("version", version))
	s.follow()

	if err := s.store.WaitSettled(ctx); err != nil {
		s.logger.Fatal("waiting for the session", zap.Error(err))
	}

	for {
		session := s.store.Current()
		s.adopt(session)

		if session == nil {
			err = authMenu(ctx, s)
		} else {
			err = dashboardMenu(ctx, s, session)
		}

		if errors.Is(err, errExit) {
			s.logger.Info("exiting")
			return
		}
		if err != nil {
			s.logger.Error("unexpected error", zap.Error(err))
			notice(err.Error())
		}
	}
}

func authMenu(ctx context.Context, s *services) error {
	action, err := choose("SkillSight AI", []string{PromptSignIn, PromptSignUp, PromptGoogle, PromptForgotPassword, PromptExit})
	if err != nil {
		return err
	}

	switch action {
	case PromptSignIn, PromptSignUp:
		email, err := ask("Email", true)
		if err != nil {
			return err
		}
		password, err := askSecret("Password")
		if err != nil {
			return err
		}

		if action == PromptSignIn {
			err = s.store.SignInWithPassword(ctx, email, password)
		} else {
			err = s.store.SignUp(ctx, email, password)
		}
		if err != nil {
			notice(auth.Message(err))
		}
		return nil
	case PromptGoogle:
		token, err := askSecret("Google ID token")
		if err != nil {
			return err
		}
		if err := s.store.SignInWithFederatedProvider(ctx, auth.GoogleProviderID, token); err != nil {
			notice(auth.Message(err))
		}
		return nil
	case PromptForgotPassword:
		email, err := ask("Email", false)
		if err != nil {
			return err
		}
		if err := s.store.SendPasswordReset(ctx, email); err != nil {
			notice(auth.Message(err))
			return nil
		}
		notice("Password reset email sent. Check your inbox.")
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func dashboardMenu(ctx context.Context, s *services, session *auth.Session) error {
	c := s.controller

	if !c.Dashboard().Loaded {
		if err := c.LoadSummaries(ctx); err != nil && !errors.Is(err, viewstate.ErrStale) {
			s.logger.Debug("dashboard is rendered with an error", zap.Error(err))
		}
	}

	fmt.Println(view.Dashboard(session.Name, c.Dashboard()))

	items := []string{}
	if c.CanViewResults() {
		items = append(items, PromptSelect, PromptViewResults)
	}
	if c.CanDeleteSelected() {
		items = append(items, PromptDelete)
	}
	if _, ok := c.Active(); ok {
		items = append(items, PromptShare, PromptExport)
	}
	items = append(items, PromptNewAnalysis, PromptRefresh, PromptSignOut, PromptExit)

	action, err := choose("What next?", items)
	if err != nil {
		return err
	}

	switch action {
	case PromptSelect:
		return selectAnalysis(s)
	case PromptViewResults:
		active, _ := c.Active()
		return resultsMenu(ctx, s, active.ID)
	case PromptDelete:
		err := c.DeleteSelected(ctx)
		switch {
		case err == nil, errors.Is(err, viewstate.ErrNotConfirmed):
		default:
			notice(backend.Message(err, "Failed to delete analysis"))
		}
		return nil
	case PromptShare:
		msg, err := c.ShareActive(ctx)
		return report(s, msg, err, "Failed to share analysis")
	case PromptExport:
		location, err := c.ExportActive(ctx)
		return report(s, "Exported to "+location, err, "Failed to export analysis")
	case PromptNewAnalysis:
		return newAnalysis(ctx, s)
	case PromptRefresh:
		if err := c.LoadSummaries(ctx); err != nil && !errors.Is(err, viewstate.ErrStale) {
			s.logger.Debug("refresh failed", zap.Error(err))
		}
		return nil
	case PromptSignOut:
		if err := s.store.SignOut(ctx); err != nil {
			notice(auth.Message(err))
		}
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func selectAnalysis(s *services) error {
	d := s.controller.Dashboard()

	labels := make([]string, 0, len(d.Summaries))
	for _, summary := range d.Summaries {
		labels = append(labels, view.Label(summary, summary.ID == d.ActiveID))
	}
	labels = append(labels, PromptBack)

	index, err := chooseIndex("Recent analyses", labels)
	if err != nil {
		return err
	}
	if index < len(d.Summaries) {
		s.controller.Select(d.Summaries[index].ID)
	}

	return nil
}

func resultsMenu(ctx context.Context, s *services, id string) error {
	c := s.controller

	if id != "" {
		if _, err := c.LoadDetail(ctx, id); err != nil && !errors.Is(err, viewstate.ErrStale) {
			s.logger.Debug("results are rendered with an error", zap.Error(err))
		}
	}
	defer c.ResetDetail()

	for {
		detail := c.Detail()
		fmt.Println(view.Results(detail))

		items := []string{PromptBack}
		if detail.State == viewstate.DetailLoaded {
			items = []string{PromptExport, PromptShare, PromptBack}
		}

		action, err := choose("Results", items)
		if err != nil {
			return err
		}

		switch action {
		case PromptExport:
			location, err := c.ExportDetail(ctx)
			if err := report(s, "Exported to "+location, err, "Failed to export analysis"); err != nil {
				return err
			}
		case PromptShare:
			msg, err := c.ShareDetail(ctx)
			if err := report(s, msg, err, "Failed to share analysis"); err != nil {
				return err
			}
		case PromptBack:
			return nil
		}
	}
}

func newAnalysis(ctx context.Context, s *services) error {
	role, err := choose("Target Job Role", analysis.Roles)
	if err != nil {
		return err
	}

	levels := make([]string, 0, len(analysis.ExperienceLevels))
	for _, level := range analysis.ExperienceLevels {
		levels = append(levels, level.Label)
	}
	level, err := chooseIndex("Years of Experience", levels)
	if err != nil {
		return err
	}

	mode, err := choose("Input Mode", []string{tabManualLabel, tabResumeLabel})
	if err != nil {
		return err
	}

	draft := analysis.Draft{
		JobTitle:   role,
		Experience: analysis.ExperienceLevels[level].Value,
		ActiveTab:  analysis.TabManual,
	}

	if mode == tabResumeLabel {
		draft.ActiveTab = analysis.TabResume

		path, err := ask("Resume file (PDF, DOCX or TXT)", true)
		if err != nil {
			return err
		}

		text, err := parseResume(ctx, s, path)
		if err != nil {
			notice(backend.Message(err, uploadFailed))
			return nil
		}
		draft.ResumeText = text
	} else {
		if draft.JobDescription, err = ask("Job Description", true); err != nil {
			return err
		}
		if draft.YourSkills, err = ask("Your Skills (comma separated)", true); err != nil {
			return err
		}
	}

	if err := analysis.Validate(draft); err != nil {
		notice(err.Error())
		return nil
	}

	fmt.Println("Analyzing...")
	detail, err := s.api.Analyze(ctx, analysis.BuildPayload(draft, draft.ActiveTab, s.controller.User()))
	if err != nil {
		s.logger.Warn("analysis failed", zap.Error(err))
		notice(analyzeFailure(err))
		return nil
	}

	// The new analysis shows up in the history on the next load.
	s.controller.AdoptDetail("", detail)
	if err := s.controller.LoadSummaries(ctx); err != nil && !errors.Is(err, viewstate.ErrStale) {
		s.logger.Debug("reloading dashboard after analysis", zap.Error(err))
	}

	return resultsMenu(ctx, s, "")
}

// analyzeFailure is the message shown for a failed submission. It lists the
// roles the backend knows when it rejected the role.
func analyzeFailure(err error) string {
	msg := backend.Message(err, analyzeFailed)

	var serverErr *backend.ServerError
	if errors.As(err, &serverErr) && len(serverErr.AvailableRoles) > 0 {
		msg += "\nAvailable roles: " + strings.Join(serverErr.AvailableRoles, ", ")
	}

	return msg
}

func parseResume(ctx context.Context, s *services, path string) (string, error) {
	file, err := upload.Preflight(path, s.config.Upload.MaxBytes)
	if err != nil {
		return "", err
	}

	fmt.Println("Uploading...")
	return s.api.ParseResume(ctx, file.Name, file.Reader())
}

// report shows the outcome of an export or share action.
func report(s *services, msg string, err error, fallback string) error {
	switch {
	case err == nil:
		notice(msg)
	case errors.Is(err, viewstate.ErrNothingActive):
		notice("Nothing to act on yet.")
	default:
		s.logger.Warn(fallback, zap.Error(err))
		notice(fmt.Sprintf("%s: %s", fallback, backend.Message(err, err.Error())))
	}
	return nil
}
