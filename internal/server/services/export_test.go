package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/contribvault/internal/logging"
	sc "github.com/dmitrijs2005/contribvault/internal/server/config"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
)

func TestComputeTotals(t *testing.T) {
	recs := []*models.ContributionWithUsers{
		rec("r1", func(c *models.ContributionWithUsers) { c.Amount = 10.10; c.Paid = true }),
		rec("r2", func(c *models.ContributionWithUsers) { c.Amount = 20.25; c.Paid = true }),
		rec("r3", func(c *models.ContributionWithUsers) { c.Amount = 0.99 }),
		rec("r4", func(c *models.ContributionWithUsers) { c.Amount = 100.333 }),
	}

	got := ComputeTotals(recs)

	if got.Count != 4 {
		t.Fatalf("count: got %d want 4", got.Count)
	}
	if got.Paid != 30.35 {
		t.Fatalf("paid: got %v", got.Paid)
	}
	if got.Unpaid != 101.32 {
		t.Fatalf("unpaid: got %v", got.Unpaid)
	}
	if math.Abs(got.Paid+got.Unpaid-got.Total) > 0.005 {
		t.Fatalf("paid %v + unpaid %v must equal total %v", got.Paid, got.Unpaid, got.Total)
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	got := ComputeTotals(nil)
	if got.Count != 0 || got.Total != 0 || got.Paid != 0 || got.Unpaid != 0 {
		t.Fatalf("zero value expected for empty set: %+v", got)
	}
}

func TestCSVRenderer_Render(t *testing.T) {
	recs := []*models.ContributionWithUsers{
		rec("r1", func(c *models.ContributionWithUsers) {
			c.UserEmail = "agent@example.com"
			c.AgentEmail = models.UnknownEmail
		}),
	}

	out, err := CSVRenderer{}.Render(recs, ComputeTotals(recs))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, one row and a totals line, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,created_at") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "alice@example.com") || !strings.Contains(lines[1], "agent@example.com") {
		t.Fatalf("row missing decrypted values: %q", lines[1])
	}
	if !strings.Contains(lines[2], "100.00") {
		t.Fatalf("totals line missing: %q", lines[2])
	}
}

func stubAWSSeams(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestExport_UploadsAndReturnsPresignedURL(t *testing.T) {
	stubAWSSeams(t)

	var uploaded *s3.PutObjectInput
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		uploaded = in
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/" + *in.Key}, nil
	}

	cfg := &sc.Config{S3Bucket: "exports", S3Region: "us-east-1"}
	s := NewExportService(cfg, logging.NewJSONLogger())

	recs := []*models.ContributionWithUsers{rec("r1", nil)}
	url, err := s.Export(context.Background(), recs, CSVRenderer{})
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}

	if uploaded == nil {
		t.Fatalf("nothing uploaded")
	}
	if *uploaded.Bucket != "exports" {
		t.Fatalf("bucket: got %q", *uploaded.Bucket)
	}
	now := time.Now()
	wantPrefix := "exports/" + now.Format("2006/1/2") + "/"
	if !strings.HasPrefix(*uploaded.Key, wantPrefix) || !strings.HasSuffix(*uploaded.Key, ".csv") {
		t.Fatalf("unexpected storage key: %q", *uploaded.Key)
	}
	if *uploaded.ContentType != "text/csv" {
		t.Fatalf("content type: got %q", *uploaded.ContentType)
	}
	if !strings.HasPrefix(url, "https://s3.local/exports/") {
		t.Fatalf("unexpected presigned url: %q", url)
	}
}

func TestExport_PutError(t *testing.T) {
	stubAWSSeams(t)

	wantErr := errors.New("upload failed")
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, wantErr
	}

	s := NewExportService(&sc.Config{S3Bucket: "exports"}, logging.NewJSONLogger())

	_, err := s.Export(context.Background(), []*models.ContributionWithUsers{rec("r1", nil)}, CSVRenderer{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected upload error, got %v", err)
	}
}

func TestExport_PresignError(t *testing.T) {
	stubAWSSeams(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return &s3.PutObjectOutput{}, nil
	}
	wantErr := errors.New("presign failed")
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, wantErr
	}

	s := NewExportService(&sc.Config{S3Bucket: "exports"}, logging.NewJSONLogger())

	_, err := s.Export(context.Background(), []*models.ContributionWithUsers{rec("r1", nil)}, CSVRenderer{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected presign error, got %v", err)
	}
}

type failingRenderer struct{}

func (failingRenderer) ContentType() string { return "text/plain" }
func (failingRenderer) Extension() string   { return "txt" }
func (failingRenderer) Render([]*models.ContributionWithUsers, Totals) ([]byte, error) {
	return nil, errors.New("render failed")
}

func TestExport_RenderError(t *testing.T) {
	stubAWSSeams(t)

	s := NewExportService(&sc.Config{S3Bucket: "exports"}, logging.NewJSONLogger())

	_, err := s.Export(context.Background(), []*models.ContributionWithUsers{rec("r1", nil)}, failingRenderer{})
	if err == nil || !strings.Contains(err.Error(), "render failed") {
		t.Fatalf("expected render error, got %v", err)
	}
}
