package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"wedsync-api/core/config"
	"wedsync-api/core/errors"
	"wedsync-api/core/logger"
	"wedsync-api/modules/calendar/entity"
	"wedsync-api/modules/calendar/repository"

	ical "github.com/arran4/golang-ical"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// ExportService renders a tenant's live events as an ICS document and
// optionally archives a copy to S3.
type ExportService interface {
	ExportICS(ctx context.Context, tenantID uuid.UUID) (*ICSExport, *errors.AppError)
	ArchiveICS(ctx context.Context, tenantID uuid.UUID) (string, *errors.AppError)
}

// ICSExport is a rendered calendar ready to be served as a download.
type ICSExport struct {
	Filename string
	Body     []byte
}

type s3Uploader interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type exportService struct {
	connections repository.ConnectionRepository
	events      repository.EventRepository
	uploader    s3Uploader
	now         func() time.Time
}

func NewExportService(connections repository.ConnectionRepository, events repository.EventRepository) ExportService {
	return &exportService{
		connections: connections,
		events:      events,
		now:         time.Now,
	}
}

func (s *exportService) ExportICS(ctx context.Context, tenantID uuid.UUID) (*ICSExport, *errors.AppError) {
	events, err := s.events.GetEventsByTenant(ctx, tenantID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load events for export", err)
	}

	name := "wedding-plan"
	if conn, err := s.connections.GetConnection(ctx, tenantID); err == nil && conn != nil && conn.CalendarName != "" {
		name = conn.CalendarName
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//wedsync//calendar//EN")
	cal.SetName(name)

	stamp := s.now().UTC()
	for i := range events {
		appendVEvent(cal, &events[i], stamp)
	}

	filename := fmt.Sprintf("%s-%s.ics", slug.Make(name), stamp.Format("20060102"))
	logger.Info("ExportService:ExportICS:Success", "tenant_id", tenantID, "filename", filename, "events", len(events))
	return &ICSExport{
		Filename: filename,
		Body:     []byte(cal.Serialize()),
	}, nil
}

func appendVEvent(cal *ical.Calendar, ev *entity.CalendarEvent, stamp time.Time) {
	ve := cal.AddEvent(ev.ID.String())
	ve.SetDtStampTime(stamp)
	ve.SetModifiedAt(ev.UpdatedAt)
	ve.SetSummary(ev.Title)
	if ev.Description != nil {
		ve.SetDescription(*ev.Description)
	}
	if ev.Location != nil {
		ve.SetLocation(*ev.Location)
	}

	if ev.AllDay {
		start := ev.StartTime.UTC().Truncate(24 * time.Hour)
		end := start.AddDate(0, 0, 1)
		if ev.EndTime != nil {
			// DTEND is exclusive in iCalendar.
			end = ev.EndTime.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
		}
		ve.SetAllDayStartAt(start)
		ve.SetAllDayEndAt(end)
		return
	}

	ve.SetStartAt(ev.StartTime.UTC())
	if ev.EndTime != nil {
		ve.SetEndAt(ev.EndTime.UTC())
	} else {
		ve.SetEndAt(ev.StartTime.UTC().Add(time.Hour))
	}
}

// ArchiveICS uploads the current export to the configured S3 bucket and
// returns the object key.
func (s *exportService) ArchiveICS(ctx context.Context, tenantID uuid.UUID) (string, *errors.AppError) {
	cfg := config.Get()
	if cfg.S3.Bucket == "" {
		return "", errors.NewAppError(errors.ErrInvalidInput, "ICS archiving is not configured", nil)
	}

	export, appErr := s.ExportICS(ctx, tenantID)
	if appErr != nil {
		return "", appErr
	}

	uploader, err := s.s3Client(ctx)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to initialize S3 client", err)
	}

	key := fmt.Sprintf("exports/%s/%s", tenantID, export.Filename)
	_, err = uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(cfg.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(export.Body),
		ContentType: aws.String("text/calendar"),
	})
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to upload ICS archive", err)
	}

	logger.Info("ExportService:ArchiveICS:Success", "tenant_id", tenantID, "key", key)
	return key, nil
}

func (s *exportService) s3Client(ctx context.Context) (s3Uploader, error) {
	if s.uploader != nil {
		return s.uploader, nil
	}

	cfg := config.Get()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	s.uploader = s3.NewFromConfig(awsCfg)
	return s.uploader, nil
}
