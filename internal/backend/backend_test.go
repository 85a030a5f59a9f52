package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(zap.NewNop(), srv.URL)
}

func TestDashboardStatsNormalizesIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/dashboard-stats/", r.URL.Path)
		assert.Equal(t, "user-1", r.URL.Query().Get("uid"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"total_analyses": 2,
			"avg_match_score": "61%",
			"skills_acquired": 7,
			"learning_hours": 12,
			"recent_analyses": [
				{"id": 12, "date": "2024-05-02", "jobTitle": "Data Scientist", "matchPercentage": 72, "missingSkills": ["SQL", "Statistics"]},
				{"id": "abc", "date": "2024-05-01", "jobTitle": "DevOps Engineer", "matchPercentage": 50}
			],
			"recommended_skills": [{"name": "Python", "category": "Programming", "priority": "High"}]
		}`)
	})

	stats, err := client.DashboardStats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalAnalyses)
	assert.Equal(t, "61%", stats.AvgMatchScore)
	assert.Equal(t, 7, stats.SkillsAcquired)
	assert.Equal(t, 12, stats.LearningHours)
	require.Len(t, stats.RecentAnalyses, 2)
	assert.Equal(t, []string{"12", "abc"}, stats.RecentAnalyses.IDs())
	assert.Equal(t, "Data Scientist", stats.RecentAnalyses[0].JobTitle)
	assert.Equal(t, 72.0, stats.RecentAnalyses[0].MatchPercentage)
	assert.Equal(t, []string{"SQL", "Statistics"}, stats.RecentAnalyses[0].MissingSkills)
	assert.Nil(t, stats.RecentAnalyses[1].MissingSkills)
	assert.Equal(t, []RecommendedSkill{{Name: "Python", Category: "Programming", Priority: "High"}}, stats.RecommendedSkills)
}

func TestDashboardStatsRequiresUID(t *testing.T) {
	client := New(zap.NewNop(), "http://127.0.0.1:0")

	_, err := client.DashboardStats(context.Background(), "  ")
	require.Error(t, err)
}

func TestAnalyzeSendsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/analyze/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Data Scientist", body["target_role"])
		assert.Equal(t, []any{}, body["skills"])
		assert.Equal(t, "resume", body["resume_text"])
		_, hasUID := body["firebase_uid"]
		assert.False(t, hasUID, "firebase_uid must be omitted when empty")

		io.WriteString(w, `{"role": "Data Scientist", "match_percentage": 72, "matched_skills": ["Python"],
			"missing_skills": ["SQL", "Statistics"],
			"recommendations": [{"skill": "Statistics", "resource": "CourseX", "link": "https://example.com"}]}`)
	})

	detail, err := client.Analyze(context.Background(), AnalyzeRequest{TargetRole: "Data Scientist", ResumeText: "resume"})
	require.NoError(t, err)

	assert.Equal(t, 72.0, detail.MatchPercentage)
	assert.Equal(t, []string{"Python"}, detail.MatchedSkills)
	require.Len(t, detail.Recommendations, 1)
	assert.Equal(t, "CourseX", detail.Recommendations[0].Resource)
}

func TestAnalyzeSurfacesServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": "Role 'Astronaut' not found.", "available_roles": ["Data Scientist"]}`)
	})

	_, err := client.Analyze(context.Background(), AnalyzeRequest{TargetRole: "Astronaut"})
	require.Error(t, err)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.Status)
	assert.Equal(t, "Role 'Astronaut' not found.", serverErr.Message)
	assert.Equal(t, []string{"Data Scientist"}, serverErr.AvailableRoles)
	assert.Equal(t, "Role 'Astronaut' not found.", Message(err, "Unknown error"))
}

func TestGetAnalysis(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analysis/7/":
			io.WriteString(w, `{"role": "Python Developer", "match_percentage": 66.67, "matched_skills": [], "missing_skills": ["Django"], "recommendations": []}`)
		case "/api/analysis/8/":
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error": "Analysis not found"}`)
		case "/api/analysis/9/":
			io.WriteString(w, `null`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	detail, err := client.GetAnalysis(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Python Developer", detail.Role)
	assert.InDelta(t, 66.67, detail.MatchPercentage, 0.001)

	_, err = client.GetAnalysis(context.Background(), "8")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetAnalysis(context.Background(), "9")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetAnalysis(context.Background(), "10")
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.Status)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = client.GetAnalysis(context.Background(), "")
	require.Error(t, err)
}

func TestDeleteAnalysis(t *testing.T) {
	var deleted []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/api/analysis/3/" {
			deleted = append(deleted, "3")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	require.NoError(t, client.DeleteAnalysis(context.Background(), "3"))
	assert.Equal(t, []string{"3"}, deleted)

	err := client.DeleteAnalysis(context.Background(), "4")
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadGateway, serverErr.Status)
	assert.Empty(t, serverErr.Message)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := New(zap.NewNop(), srv.URL)

	_, err := client.GetAnalysis(context.Background(), "1")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.MethodGet, netErr.Op)
	assert.Equal(t, "Network error. Please check your connection and try again.", Message(err, ""))
}

func TestAuthorizationHeader(t *testing.T) {
	var got []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteAnalysis(context.Background(), "1"))
	client.SetIDToken("token-1")
	require.NoError(t, client.DeleteAnalysis(context.Background(), "1"))
	client.SetIDToken("")
	require.NoError(t, client.DeleteAnalysis(context.Background(), "1"))

	assert.Equal(t, []string{"", "Bearer token-1", ""}, got)
}

func TestParseResume(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantText  string
		wantParse bool
		wantMsg   string
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"text": "Go developer"}`,
			wantText: "Go developer",
		},
		{
			name:      "unsupported format",
			status:    http.StatusBadRequest,
			body:      `{"error": "Unsupported file format. Please upload PDF, DOCX, or TXT."}`,
			wantParse: true,
			wantMsg:   "Unsupported file format. Please upload PDF, DOCX, or TXT.",
		},
		{
			name:    "server failure",
			status:  http.StatusInternalServerError,
			body:    `{"error": "Error parsing file: boom"}`,
			wantMsg: "Error parsing file: boom",
		},
		{
			name:      "proxy refused large file",
			status:    http.StatusRequestEntityTooLarge,
			body:      `<html>Request Entity Too Large</html>`,
			wantParse: true,
			wantMsg:   "Server returned an error (413). Check if the file is too large.",
		},
		{
			name:    "unstructured failure",
			status:  http.StatusBadGateway,
			body:    `bad gateway`,
			wantMsg: "Server returned an error (502). Check if the file is too large.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/parse-resume/", r.URL.Path)

				file, header, err := r.FormFile("file")
				require.NoError(t, err)
				defer file.Close()
				assert.Equal(t, "cv.txt", header.Filename)

				data, err := io.ReadAll(file)
				require.NoError(t, err)
				assert.Equal(t, "resume body", string(data))

				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			text, err := client.ParseResume(context.Background(), "/tmp/cv.txt", strings.NewReader("resume body"))
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantText, text)
				return
			}

			require.Error(t, err)
			var parseErr *ParseError
			assert.Equal(t, tt.wantParse, errors.As(err, &parseErr))
			assert.Equal(t, tt.wantMsg, Message(err, ""))
		})
	}
}

func TestSummariesWithout(t *testing.T) {
	list := Summaries{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	rest, removed := list.Without("2")
	assert.True(t, removed)
	assert.Equal(t, []string{"1", "3"}, rest.IDs())
	assert.Equal(t, []string{"1", "2", "3"}, list.IDs(), "original list must not change")

	rest, removed = rest.Without("2")
	assert.False(t, removed)
	assert.Equal(t, []string{"1", "3"}, rest.IDs())
}

func TestSummariesClone(t *testing.T) {
	list := Summaries{{ID: "1", MissingSkills: []string{"Go"}}}

	clone := list.Clone()
	clone[0].MissingSkills[0] = "Rust"

	assert.Equal(t, "Go", list[0].MissingSkills[0])
	assert.Nil(t, Summaries(nil).Clone())
}
