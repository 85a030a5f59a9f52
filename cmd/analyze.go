package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillsight/internal/analysis"
	"github.com/spigell/skillsight/internal/auth"
	"github.com/spigell/skillsight/internal/backend"
	"github.com/spigell/skillsight/internal/view"
)

const (
	outputText = "text"
	outputJSON = "json"

	passwordEnv = "SKILLSIGHT_PASSWORD"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Submit one analysis and print the results",
	Example: `  skillsight analyze --role "Data Scientist" --experience 1-3 --skills "Python, SQL" --description "..."
  skillsight analyze --role "DevOps Engineer" --experience 3-5 --resume ./cv.pdf --email me@example.com`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return analyze(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("role", "r", "", "target job role")
	analyzeCmd.Flags().StringP("experience", "x", "", "years of experience: 0-1, 1-3, 3-5 or 5+")
	analyzeCmd.Flags().StringP("skills", "s", "", "comma separated list of your skills")
	analyzeCmd.Flags().String("description", "", "job description")
	analyzeCmd.Flags().String("resume", "", "resume file to analyze instead of the skills list")
	analyzeCmd.Flags().StringP("email", "e", "", "sign in to save the analysis to the history (password from "+passwordEnv+" or a prompt)")
	analyzeCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
}

func analyze(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	flags := cmd.Flags()
	role, _ := flags.GetString("role")
	experience, _ := flags.GetString("experience")
	skills, _ := flags.GetString("skills")
	description, _ := flags.GetString("description")
	resume, _ := flags.GetString("resume")
	email, _ := flags.GetString("email")
	output, _ := flags.GetString("output")

	if output != outputText && output != outputJSON {
		return fmt.Errorf("unknown output format %q", output)
	}

	s, err := newServices(ctx, nil)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.store.WaitSettled(ctx); err != nil {
		return err
	}

	if email != "" {
		if err := signIn(ctx, s, email); err != nil {
			return err
		}
	}

	draft := analysis.Draft{
		JobTitle:       role,
		JobDescription: description,
		YourSkills:     skills,
		Experience:     experience,
		ActiveTab:      analysis.TabManual,
	}

	if resume != "" {
		draft.ActiveTab = analysis.TabResume
		if draft.ResumeText, err = parseResume(ctx, s, resume); err != nil {
			return fmt.Errorf("%s: %s", uploadFailed, backend.Message(err, err.Error()))
		}
	}

	if err := analysis.Validate(draft); err != nil {
		return err
	}

	detail, err := s.api.Analyze(ctx, analysis.BuildPayload(draft, draft.ActiveTab, s.controller.User()))
	if err != nil {
		s.logger.Debug("analysis failed", zap.Error(err))
		return errors.New(analyzeFailure(err))
	}

	if output == outputJSON {
		pretty, err := json.MarshalIndent(detail, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), view.RenderResults(view.NewResultsModel(detail)))
	return nil
}

// signIn signs in with email and a password taken from the environment or
// asked for, and points the services at the new session.
func signIn(ctx context.Context, s *services, email string) error {
	password := strings.TrimSpace(os.Getenv(passwordEnv))
	if password == "" {
		var err error
		if password, err = askSecret("Password for " + email); err != nil {
			return err
		}
	}

	if err := s.store.SignInWithPassword(ctx, email, password); err != nil {
		return errors.New(auth.Message(err))
	}

	session := s.store.Current()
	if session == nil {
		return fmt.Errorf("signing in as %s: no session", email)
	}
	s.adopt(session)

	return nil
}
