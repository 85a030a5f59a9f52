package export

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// CopiedMessage confirms the clipboard fallback.
const CopiedMessage = "Link copied to clipboard!"

// Link is what gets shared.
type Link struct {
	Title string
	Text  string
	URL   string
}

// Sharer is a platform share capability.
type Sharer interface {
	Share(ctx context.Context, link Link) error
}

// ShareURL returns the results link of analysis id.
func ShareURL(origin, id string) string {
	base := strings.TrimRight(origin, "/") + "/results"
	if id == "" {
		return base
	}
	return base + "?id=" + url.QueryEscape(id)
}

// NewLink builds the link shared for an analysis of jobTitle.
func NewLink(origin, id, jobTitle string) Link {
	return Link{
		Title: fmt.Sprintf("SkillSight AI - %s Analysis", jobTitle),
		Text:  fmt.Sprintf("Check out my skill gaps and learning path for %s!", jobTitle),
		URL:   ShareURL(origin, id),
	}
}

// Sharing shares through the platform Sharer when one is set and falls back
// to copying the URL to the clipboard.
type Sharing struct {
	logger *zap.Logger
	Origin string
	Sharer Sharer
	// Copy writes to the clipboard.
	Copy func(string) error
}

func NewSharing(logger *zap.Logger, origin string, sharer Sharer) *Sharing {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sharing{
		logger: logger,
		Origin: origin,
		Sharer: sharer,
		Copy:   clipboard.WriteAll,
	}
}

// Share shares the analysis and returns a confirmation to show, which is
// empty when the platform sharer handled it.
func (s *Sharing) Share(ctx context.Context, id, jobTitle string) (string, error) {
	link := NewLink(s.Origin, id, jobTitle)

	if s.Sharer != nil {
		if err := s.Sharer.Share(ctx, link); err != nil {
			return "", fmt.Errorf("sharing %s: %w", link.URL, err)
		}
		return "", nil
	}

	if err := s.Copy(link.URL); err != nil {
		return "", fmt.Errorf("copying %s to clipboard: %w", link.URL, err)
	}

	s.logger.Debug("share link copied", zap.String("url", link.URL))
	return CopiedMessage, nil
}

// CommandSharer runs an external program with the title, text and URL as
// arguments, for example a desktop or termux share helper.
type CommandSharer struct {
	Command string
	Args    []string
}

func (c CommandSharer) Share(ctx context.Context, link Link) error {
	args := append(append([]string{}, c.Args...), link.Title, link.Text, link.URL)

	out, err := exec.CommandContext(ctx, c.Command, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", c.Command, err, strings.TrimSpace(string(out)))
	}
	return nil
}
