package backend

import (
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	userAgent      = "spigell/skillsight"

	dashboardStatsPath = "/api/dashboard-stats/"
	analysisPath       = "/api/analysis/"
	analyzePath        = "/api/analyze/"
	parseResumePath    = "/api/parse-resume/"
)

// Client talks to the SkillSight analysis backend.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	BaseURL    string
	// Limiter paces outgoing requests when set.
	Limiter *rate.Limiter

	mu      sync.RWMutex
	idToken string
}

func New(logger *zap.Logger, baseURL string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// No client side timeout: the transport decides.
	return &Client{
		logger:     logger,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		UserAgent:  userAgent,
	}
}

// SetIDToken sets the identity token sent as a bearer credential.
// An empty token stops sending the Authorization header.
func (c *Client) SetIDToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idToken = strings.TrimSpace(token)
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idToken
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}
