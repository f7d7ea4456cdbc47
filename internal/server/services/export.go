package services

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/contribvault/internal/logging"
	sc "github.com/dmitrijs2005/contribvault/internal/server/config"
	"github.com/dmitrijs2005/contribvault/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Totals aggregates a record set for the report header. Paid plus Unpaid
// always equals Total to two decimals.
type Totals struct {
	Count  int
	Total  float64
	Paid   float64
	Unpaid float64
}

// ComputeTotals sums amounts over a display-form record set, split by paid
// status, rounded to cents.
func ComputeTotals(recs []*models.ContributionWithUsers) Totals {
	var paid, unpaid float64
	for _, r := range recs {
		if r.Paid {
			paid += r.Amount
		} else {
			unpaid += r.Amount
		}
	}
	return Totals{
		Count:  len(recs),
		Total:  round2(paid + unpaid),
		Paid:   round2(paid),
		Unpaid: round2(unpaid),
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Renderer turns a display-form record set plus totals into a downloadable
// artifact. Spreadsheet and PDF renderers live outside this service; they
// receive already-decrypted rows and never touch the codec.
type Renderer interface {
	ContentType() string
	Extension() string
	Render(recs []*models.ContributionWithUsers, totals Totals) ([]byte, error)
}

// ExportService is the batch/export gateway. It consumes display-form
// records only: a decrypt failure upstream drops the row before it ever
// reaches this service, so ciphertext cannot leak into an export.
type ExportService struct {
	config *sc.Config
	logger logging.Logger
}

func NewExportService(cfg *sc.Config, logger logging.Logger) *ExportService {
	return &ExportService{config: cfg, logger: logger.With("module", "export_service")}
}

func exportStorageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("exports/%d/%d/%d/%v.%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (s *ExportService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return client, nil
}

// Export renders the record set, uploads the artifact to object storage and
// returns a presigned download URL valid for 15 minutes.
func (s *ExportService) Export(ctx context.Context, recs []*models.ContributionWithUsers, r Renderer) (string, error) {
	totals := ComputeTotals(recs)

	data, err := r.Render(recs, totals)
	if err != nil {
		return "", fmt.Errorf("error rendering export: %w", err)
	}

	client, err := s.getS3Client()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := exportStorageKey(r.Extension())

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(r.ContentType()),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("error presigning export url: %w", err)
	}

	s.logger.Info(ctx, "export uploaded", "key", key, "rows", totals.Count)

	return req.URL, nil
}
