package chromedp_portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/repository"
	"github.com/user/attendance-service/pkg/logger"
)

const userAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36`

// Options configures the browser driving the portal.
type Options struct {
	BaseURL         string
	Headless        bool
	PageLoadTimeout time.Duration
	StepDelay       time.Duration
	MaxSessions     int // concurrent browsers; values below 1 mean 1
}

type ChromedpPortal struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	sessions    chan struct{}
	opts        Options
	logger      *zap.Logger
}

// NewChromedpPortal creates a portal driver backed by a chromedp browser
// allocator. Every call opens a fresh browser, so no session survives
// between calls.
func NewChromedpPortal(opts Options, logger *zap.Logger) *ChromedpPortal {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1366, 900),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	return &ChromedpPortal{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		sessions:    make(chan struct{}, max(opts.MaxSessions, 1)),
		opts:        opts,
		logger:      logger,
	}
}

// Close shuts the browser allocator down.
func (p *ChromedpPortal) Close() {
	p.cancelAlloc()
}

// newTask waits for a free session slot, then opens a browser bound to ctx
// and limited by the page load timeout.
func (p *ChromedpPortal) newTask(ctx context.Context) (context.Context, context.CancelFunc, error) {
	select {
	case p.sessions <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%w: waiting for a browser: %w", repository.ErrPortalTimeout, ctx.Err())
	}

	browserCtx, cancelBrowser := chromedp.NewContext(p.allocCtx, chromedp.WithLogf(p.logger.Sugar().Debugf))
	taskCtx, cancelTimeout := context.WithTimeout(browserCtx, p.opts.PageLoadTimeout)
	stop := context.AfterFunc(ctx, cancelTimeout)

	return taskCtx, func() {
		stop()
		cancelTimeout()
		cancelBrowser()
		<-p.sessions
	}, nil
}

// FetchCaptcha opens the login form and returns its CAPTCHA image.
func (p *ChromedpPortal) FetchCaptcha(ctx context.Context, rollNo string) (*entity.Captcha, error) {
	taskCtx, cancel, err := p.newTask(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	frame, err := p.openLogin(taskCtx)
	if err != nil {
		return nil, p.wrapTimeout(taskCtx, err)
	}
	if err := chromedp.Run(taskCtx,
		chromedp.SendKeys("#uid", rollNo, chromedp.ByQuery, chromedp.FromNode(frame)),
	); err != nil {
		return nil, p.wrapTimeout(taskCtx, fmt.Errorf("%w: fill roll number: %w", repository.ErrNavigationFailed, err))
	}

	image, src, err := p.captchaImage(taskCtx, frame)
	if err != nil {
		return nil, p.wrapTimeout(taskCtx, err)
	}

	p.logger.Info("Fetched captcha", logger.RollNo(rollNo), zap.Int("bytes", len(image)))
	return &entity.Captcha{RollNo: rollNo, SourceURL: src, Image: image}, nil
}

// FetchFrames logs in, navigates to the attendance page, submits the form for
// term and captures every frame.
func (p *ChromedpPortal) FetchFrames(ctx context.Context, creds entity.Credentials, term entity.Term, in repository.Interaction, opts repository.FetchOptions) ([]entity.Frame, error) {
	if in == nil {
		return nil, repository.ErrCaptchaRequired
	}

	taskCtx, cancel, err := p.newTask(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	start := time.Now()
	log := p.logger.With(logger.RollNo(creds.RollNo), zap.Int("year", term.Year), zap.Int("semester", term.Semester))

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"login", func(ctx context.Context) error { return p.login(ctx, creds, in) }},
		{"my activities", func(ctx context.Context) error {
			return p.navigate(ctx, in, myActivities, false, "Click 'My Activities' in the portal menu")
		}},
		{"attendance tree", func(ctx context.Context) error { return p.expandAttendance(ctx, in) }},
		{"my attendance", func(ctx context.Context) error {
			return p.navigate(ctx, in, myAttendance, true, "Click 'My Attendance' under the Attendance menu")
		}},
		{"term form", func(ctx context.Context) error { return p.submitTerm(ctx, term, in) }},
	}
	for _, step := range steps {
		if err := step.run(taskCtx); err != nil {
			log.Warn("Portal step failed", zap.String("step", step.name), zap.Error(err))
			return nil, p.wrapTimeout(taskCtx, err)
		}
		log.Debug("Portal step done", zap.String("step", step.name))
	}

	frames, err := p.captureFrames(taskCtx, opts)
	if err != nil {
		return nil, p.wrapTimeout(taskCtx, err)
	}

	log.Info("Captured portal frames", zap.Int("frames", len(frames)), zap.Duration("duration", time.Since(start)))
	return frames, nil
}

func (p *ChromedpPortal) wrapTimeout(taskCtx context.Context, err error) error {
	if errors.Is(taskCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, repository.ErrPortalTimeout) {
		return fmt.Errorf("%w: %w", repository.ErrPortalTimeout, err)
	}
	return err
}

// pause waits for the portal to settle between steps.
func (p *ChromedpPortal) pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
