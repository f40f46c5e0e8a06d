package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"certapi/internal/apperror"
	"certapi/internal/convert"
	"certapi/internal/logging"
	"certapi/internal/mailer"
	"certapi/internal/metrics"
	"certapi/internal/model"
	"certapi/internal/publish"
	"certapi/internal/repository"
	"certapi/internal/staging"
)

// Pipeline stage names used for spans, metrics and logs.
const (
	StageRender  = "render"
	StageConvert = "convert"
	StageStage   = "stage"
	StagePublish = "publish"
	StageNotify  = "notify"
	StageCleanup = "cleanup"
	StageStore   = "store"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeJPEG = "image/jpeg"
)

// CertificateService defines the certificate use cases.
type CertificateService interface {
	// Generate renders, converts, optionally publishes and emails one certificate.
	Generate(ctx context.Context, req model.CertificateRequest) (*model.CertificateMeta, error)

	// GetMeta returns the stored metadata of a previously generated certificate.
	GetMeta(ctx context.Context, filenameBase string) (*model.CertificateMeta, error)
}

// Renderer turns a render context into an HTML document.
type Renderer interface {
	Render(rc model.RenderContext) (string, error)
}

// Stager writes artifacts to private temporary locations.
type Stager interface {
	Stage(data []byte, baseName, ext string) (*model.StagedFile, error)
}

// Publisher uploads artifacts. Implemented by *publish.Publisher.
type Publisher interface {
	Enabled() bool
	Publish(ctx context.Context, data []byte, filename, contentType string) publish.Outcome
}

// Deps are the collaborators of the certificate pipeline.
// Publisher, Repo, Metrics, Log and Now are optional.
type Deps struct {
	Renderer  Renderer
	Converter convert.Converter
	Stager    Stager
	Publisher Publisher
	Mailer    mailer.Mailer
	Repo      repository.CertificateRepository
	Metrics   *metrics.Pipeline
	Log       logging.Logger

	IssuerName string
	BaseURL    string
	Now        func() time.Time
}

type certificateService struct {
	Deps
	cleanup func(files ...*model.StagedFile) []error
	tracer  trace.Tracer
}

// NewCertificateService constructs a new CertificateService.
func NewCertificateService(d Deps) CertificateService {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &certificateService{
		Deps:    d,
		cleanup: staging.Cleanup,
		tracer:  otel.Tracer("certapi/internal/service"),
	}
}

func (s *certificateService) Generate(ctx context.Context, req model.CertificateRequest) (*model.CertificateMeta, error) {
	now := s.Now()
	req = req.ApplyDefaults(now)
	base := model.FilenameBase(req.Name, now)

	ctx, span := s.tracer.Start(ctx, "certificate.generate",
		trace.WithAttributes(attribute.String("certificate.filename_base", base)))
	defer span.End()

	log := s.Log.With("filename_base", base)

	if err := s.Mailer.Ready(); err != nil {
		log.Error(ctx, "certificate_rejected", "error", err.Error())
		return nil, failSpan(span, err)
	}

	var doc string
	err := s.run(ctx, StageRender, func(context.Context) error {
		var err error
		doc, err = s.Renderer.Render(model.NewRenderContext(req, s.IssuerName, s.BaseURL))
		return err
	})
	if err != nil {
		return nil, failSpan(span, err)
	}

	var conv *model.ConversionResult
	err = s.run(ctx, StageConvert, func(ctx context.Context) error {
		var err error
		conv, err = s.Converter.Convert(ctx, doc)
		return err
	})
	if err != nil {
		return nil, failSpan(span, err)
	}

	var staged []*model.StagedFile
	cleaned := false
	defer func() {
		if !cleaned {
			s.cleanupStaged(ctx, log, staged)
		}
	}()

	var pdfFile, imgFile *model.StagedFile
	err = s.run(ctx, StageStage, func(context.Context) error {
		var err error
		if pdfFile, err = s.Stager.Stage(conv.PDF, base, "pdf"); err != nil {
			return apperror.Wrap(apperror.KindInternal, "failed to stage certificate", err)
		}
		staged = append(staged, pdfFile)
		if imgFile, err = s.Stager.Stage(conv.Image, base, "jpg"); err != nil {
			return apperror.Wrap(apperror.KindInternal, "failed to stage certificate", err)
		}
		staged = append(staged, imgFile)
		return nil
	})
	if err != nil {
		return nil, failSpan(span, err)
	}

	var pub model.PublishResult
	if req.UploadToSupabase && s.Publisher != nil && s.Publisher.Enabled() {
		pub = s.publishArtifacts(ctx, conv, base)
	}
	meta := &model.CertificateMeta{
		FilenameBase: base,
		PDFURL:       pub.PDFURL,
		ImageURL:     pub.ImageURL,
		Warnings:     pub.Warnings,
	}

	var sent *model.SendResult
	err = s.run(ctx, StageNotify, func(ctx context.Context) error {
		var err error
		sent, err = s.Mailer.Send(ctx, buildMessage(req, s.IssuerName, pdfFile, imgFile))
		return err
	})
	if err != nil {
		return nil, failSpan(span, err)
	}

	meta.Warnings = append(meta.Warnings, s.cleanupStaged(ctx, log, staged)...)
	cleaned = true

	if sent == nil {
		sent = &model.SendResult{}
	}
	meta.EmailSent = len(sent.Accepted) > 0
	if sent.MessageID != "" {
		id := sent.MessageID
		meta.MessageID = &id
	}
	meta.CreatedAt = s.Now().UTC()

	if s.Repo != nil {
		start := time.Now()
		rec := &model.CertificateRecord{Email: req.Email, Meta: *meta}
		if err := s.Repo.Create(ctx, rec); err != nil {
			log.Warn(ctx, "certificate_store_failed", "error", err.Error())
			meta.Warnings = append(meta.Warnings, fmt.Sprintf("metadata store: %v", err))
			s.Metrics.Observe(StageStore, metrics.OutcomeWarning, start)
		} else {
			s.Metrics.Observe(StageStore, metrics.OutcomeOK, start)
		}
	}

	log.Info(ctx, "certificate_generated",
		"email_sent", meta.EmailSent,
		"published", meta.PDFURL != nil || meta.ImageURL != nil,
		"warnings", len(meta.Warnings),
	)
	return meta, nil
}

func (s *certificateService) GetMeta(ctx context.Context, filenameBase string) (*model.CertificateMeta, error) {
	if filenameBase == "" {
		return nil, apperror.Validation("id is required")
	}
	if s.Repo == nil {
		return nil, apperror.New(apperror.KindNotFound, "certificate not found")
	}
	m, err := s.Repo.FindByFilenameBase(ctx, filenameBase)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Wrap(apperror.KindNotFound, "certificate not found", err)
		}
		return nil, apperror.Wrap(apperror.KindInternal, "failed to load certificate", err)
	}
	return m, nil
}

// run executes one stage inside a span and records its outcome.
func (s *certificateService) run(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "certificate."+stage)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.Metrics.Observe(stage, metrics.OutcomeOf(err), start)
	if err != nil {
		s.Log.Error(ctx, "certificate_stage_failed", "stage", stage, "kind", string(apperror.KindOf(err)), "error", err.Error())
		return failSpan(span, err)
	}
	return nil
}

// publishArtifacts uploads both artifacts independently. A failed upload leaves
// its URL nil and adds a warning.
func (s *certificateService) publishArtifacts(ctx context.Context, conv *model.ConversionResult, base string) model.PublishResult {
	var res model.PublishResult
	res.PDFURL = s.publish(ctx, &res, conv.PDF, base+".pdf", ContentTypePDF)
	res.ImageURL = s.publish(ctx, &res, conv.Image, base+".jpg", ContentTypeJPEG)
	return res
}

func (s *certificateService) publish(ctx context.Context, res *model.PublishResult, data []byte, filename, contentType string) *string {
	ctx, span := s.tracer.Start(ctx, "certificate."+StagePublish,
		trace.WithAttributes(attribute.String("certificate.artifact", filename)))
	defer span.End()

	start := time.Now()
	out := s.Publisher.Publish(ctx, data, filename, contentType)
	if out.Warning != nil {
		span.RecordError(out.Warning)
		res.Warnings = append(res.Warnings, out.Warning.Error())
		s.Metrics.Observe(StagePublish, metrics.OutcomeWarning, start)
		return nil
	}
	s.Metrics.Observe(StagePublish, metrics.OutcomeOK, start)
	return out.URL
}

func (s *certificateService) cleanupStaged(ctx context.Context, log logging.Logger, files []*model.StagedFile) []string {
	if len(files) == 0 {
		return nil
	}
	start := time.Now()
	errs := s.cleanup(files...)

	outcome := metrics.OutcomeOK
	var warnings []string
	for _, err := range errs {
		log.Warn(ctx, "staging_cleanup_failed", "error", err.Error())
		warnings = append(warnings, fmt.Sprintf("cleanup: %v", err))
		outcome = metrics.OutcomeWarning
	}
	s.Metrics.Observe(StageCleanup, outcome, start)
	return warnings
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperror.KindOf(err)))
	return err
}

func buildMessage(req model.CertificateRequest, issuer string, pdf, img *model.StagedFile) model.Message {
	text := fmt.Sprintf("Hi %s,\n\nPlease find attached your certificate.\n\nRegards,\n%s", req.Name, issuer)
	body := fmt.Sprintf("<p>Hi %s,</p><p>Please find attached your certificate.</p><p>Regards,<br/>%s</p>",
		html.EscapeString(req.Name), html.EscapeString(issuer))

	return model.Message{
		To:      req.Email,
		Subject: req.CertificateTitle + " - " + req.Name,
		Text:    text,
		HTML:    body,
		Attachments: []model.Attachment{
			{Filename: filepath.Base(pdf.Path), Path: pdf.Path, ContentType: ContentTypePDF},
			{Filename: filepath.Base(img.Path), Path: img.Path, ContentType: ContentTypeJPEG},
		},
	}
}
