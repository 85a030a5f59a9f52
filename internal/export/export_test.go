package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/skillsight/internal/backend"
)

func TestFileExporterWritesReport(t *testing.T) {
	dir := t.TempDir()
	exporter := NewFileExporter(zap.NewNop(), dir)

	report := SummaryReport(backend.AnalysisSummary{ID: "12", JobTitle: "UI/UX Designer", MatchPercentage: 40})

	location, err := exporter.Export(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(location))
	assert.True(t, strings.HasPrefix(filepath.Base(location), "skillsight_ui-ux-designer_12_"), location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "12", decoded["id"])
	assert.Equal(t, "UI/UX Designer", decoded["job_title"])
	assert.NotContains(t, decoded, "detail")
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestFileExporterRemovesFailedWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	orig := createTemp
	t.Cleanup(func() { createTemp = orig })
	// A read-only handle makes the write fail.
	createTemp = func(string, string) (*os.File, error) { return os.Open(path) }

	exporter := NewFileExporter(zap.NewNop(), dir)
	_, err := exporter.Export(context.Background(), SummaryReport(backend.AnalysisSummary{ID: "1", JobTitle: "Data Scientist"}))
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestFileExporterMissingDir(t *testing.T) {
	exporter := NewFileExporter(zap.NewNop(), filepath.Join(t.TempDir(), "missing"))

	_, err := exporter.Export(context.Background(), SummaryReport(backend.AnalysisSummary{ID: "1"}))
	require.Error(t, err)
}

func TestS3ExporterUploadsReport(t *testing.T) {
	client := &fakeS3{}
	exporter := NewS3ExporterWithClient(zap.NewNop(), client, "reports", "/skillsight/")

	detail := &backend.AnalysisDetail{Role: "Data Scientist", MatchPercentage: 72}
	location, err := exporter.Export(context.Background(), DetailReport("", detail))
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "reports", aws.ToString(client.input.Bucket))
	key := aws.ToString(client.input.Key)
	assert.True(t, strings.HasPrefix(key, "skillsight/skillsight_data-scientist_"), key)
	assert.Equal(t, "s3://reports/"+key, location)
	assert.Equal(t, "application/json", aws.ToString(client.input.ContentType))
	assert.Contains(t, client.body, `"match_percentage": 72`)
}

func TestS3ExporterFailure(t *testing.T) {
	exporter := NewS3ExporterWithClient(nil, &fakeS3{err: errors.New("denied")}, "reports", "")

	_, err := exporter.Export(context.Background(), SummaryReport(backend.AnalysisSummary{ID: "1"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestNewS3ExporterRequiresBucket(t *testing.T) {
	_, err := NewS3Exporter(context.Background(), zap.NewNop(), S3Config{})
	require.Error(t, err)
}

func TestShareURL(t *testing.T) {
	assert.Equal(t, "https://skillsight.app/results?id=1", ShareURL("https://skillsight.app/", "1"))
	assert.Equal(t, "https://skillsight.app/results?id=a+b", ShareURL("https://skillsight.app", "a b"))
	assert.Equal(t, "https://skillsight.app/results", ShareURL("https://skillsight.app", ""))
}

func TestSharingFallsBackToClipboard(t *testing.T) {
	var copied string
	sharing := NewSharing(zap.NewNop(), "http://localhost:5173", nil)
	sharing.Copy = func(s string) error {
		copied = s
		return nil
	}

	msg, err := sharing.Share(context.Background(), "7", "Data Scientist")
	require.NoError(t, err)
	assert.Equal(t, CopiedMessage, msg)
	assert.Equal(t, "http://localhost:5173/results?id=7", copied)
}

type recordingSharer struct {
	links []Link
}

func (r *recordingSharer) Share(_ context.Context, link Link) error {
	r.links = append(r.links, link)
	return nil
}

func TestSharingUsesPlatformSharer(t *testing.T) {
	sharer := &recordingSharer{}
	sharing := NewSharing(zap.NewNop(), "http://localhost:5173", sharer)
	sharing.Copy = func(string) error {
		t.Fatal("clipboard must not be used when a sharer is configured")
		return nil
	}

	msg, err := sharing.Share(context.Background(), "7", "Data Scientist")
	require.NoError(t, err)
	assert.Empty(t, msg)
	require.Len(t, sharer.links, 1)
	assert.Equal(t, Link{
		Title: "SkillSight AI - Data Scientist Analysis",
		Text:  "Check out my skill gaps and learning path for Data Scientist!",
		URL:   "http://localhost:5173/results?id=7",
	}, sharer.links[0])
}

func TestSharingClipboardFailure(t *testing.T) {
	sharing := NewSharing(zap.NewNop(), "http://localhost", nil)
	sharing.Copy = func(string) error { return errors.New("no clipboard utility") }

	msg, err := sharing.Share(context.Background(), "1", "x")
	require.Error(t, err)
	assert.Empty(t, msg)
}
