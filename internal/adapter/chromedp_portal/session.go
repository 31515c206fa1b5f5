package chromedp_portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/attendance-service/internal/entity"
	"github.com/user/attendance-service/internal/repository"
	"github.com/user/attendance-service/pkg/utils"
)

const (
	frameReadTimeout = 10 * time.Second
	topDocument      = "main"

	jsClick       = `function() { this.click(); }`
	jsSelectIndex = `function(i) {
	this.selectedIndex = i;
	this.dispatchEvent(new Event('change', { bubbles: true }));
}`
)

var (
	// Search order for menu links, then for the term form and frame capture.
	navFrames     = []string{"data", "top", "contents", "bottom", "banner"}
	captureOrder  = []string{"data", "contents", "bottom", "top"}
	studentLogin  = []string{"Student Login"}
	myActivities  = []string{"My Activities"}
	myAttendance  = []string{"My Attendance"}
	attendanceKey = []string{"Attendance"}
)

// target is a document to search: a named frame, or the top document when
// node is nil.
type target struct {
	name string
	node *cdp.Node
}

// frames returns the frame and iframe elements of the top document by name.
func (p *ChromedpPortal) frames(ctx context.Context) (map[string]*cdp.Node, []*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes("frame, iframe", &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, nil, err
	}
	byName := make(map[string]*cdp.Node, len(nodes))
	for _, n := range nodes {
		if name := n.AttributeValue("name"); name != "" {
			byName[name] = n
		}
	}
	return byName, nodes, nil
}

// targets lists the named frames present in order. The top document is
// prepended when withTop is set, and used alone when the page has no frames.
func (p *ChromedpPortal) targets(ctx context.Context, order []string, withTop bool) ([]target, error) {
	byName, all, err := p.frames(ctx)
	if err != nil {
		return nil, err
	}
	var out []target
	if withTop || len(all) == 0 {
		out = append(out, target{name: topDocument})
	}
	for _, name := range order {
		if n, ok := byName[name]; ok {
			out = append(out, target{name: name, node: n})
		}
	}
	return out, nil
}

func (p *ChromedpPortal) outerHTML(ctx context.Context, node *cdp.Node) (string, error) {
	readCtx, cancel := context.WithTimeout(ctx, frameReadTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(readCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery, chromedp.FromNode(node))); err != nil {
		return "", err
	}
	return html, nil
}

func (p *ChromedpPortal) document(ctx context.Context, node *cdp.Node) (*goquery.Document, error) {
	html, err := p.outerHTML(ctx, node)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// callNth runs fn on the i-th element matching selector inside frame.
func (p *ChromedpPortal) callNth(ctx context.Context, frame *cdp.Node, selector string, i int, fn string, args ...interface{}) error {
	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(frame))); err != nil {
		return err
	}
	if i >= len(nodes) {
		return fmt.Errorf("element %s[%d] not found", selector, i)
	}
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return callOnNode(ctx, nodes[i], fn, nil, args...)
	}))
}

// callOnNode runs the JavaScript function fn with node as this.
func callOnNode(ctx context.Context, node *cdp.Node, fn string, res any, args ...any) error {
	obj, err := dom.ResolveNode().WithNodeID(node.NodeID).Do(ctx)
	if err != nil {
		return err
	}
	if err := chromedp.CallFunctionOn(fn, res, onObject(obj.ObjectID), args...).Do(ctx); err != nil {
		return err
	}
	// Fails once the page navigated away, which a click may cause.
	_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
	return nil
}

// onObject targets a CallFunctionOn at a resolved remote object.
func onObject(id runtime.RemoteObjectID) chromedp.CallOption {
	return func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(id)
	}
}

// clickLink clicks the first link matching keywords across the top document
// and the navigation frames. It reports whether a link was found.
func (p *ChromedpPortal) clickLink(ctx context.Context, keywords []string, exact bool) (bool, error) {
	targets, err := p.targets(ctx, navFrames, true)
	if err != nil {
		return false, err
	}
	for _, t := range targets {
		doc, err := p.document(ctx, t.node)
		if err != nil {
			p.logger.Debug("Skipping unreadable frame", zap.String("frame", t.name), zap.Error(err))
			continue
		}
		if i := linkIndex(doc, keywords, exact); i >= 0 {
			p.logger.Debug("Clicking link", zap.String("frame", t.name), zap.Strings("keywords", keywords))
			return true, p.callNth(ctx, t.node, linkSelector, i, jsClick)
		}
	}
	return false, nil
}

func (p *ChromedpPortal) manual(ctx context.Context, in repository.Interaction, instruction string) error {
	p.logger.Info("Waiting for manual step", zap.String("instruction", instruction))
	return in.AwaitManualStep(ctx, instruction)
}

// openLogin loads the portal, opens the student login form and returns the
// frame holding it (nil when the form is in the top document).
func (p *ChromedpPortal) openLogin(ctx context.Context) (*cdp.Node, error) {
	if err := chromedp.Run(ctx, chromedp.Navigate(p.opts.BaseURL)); err != nil {
		return nil, fmt.Errorf("%w: open portal: %w", repository.ErrNavigationFailed, err)
	}
	if err := p.pause(ctx, p.opts.StepDelay); err != nil {
		return nil, err
	}

	found, err := p.clickLink(ctx, studentLogin, false)
	if err != nil {
		return nil, fmt.Errorf("%w: student login: %w", repository.ErrNavigationFailed, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: student login link not found", repository.ErrNavigationFailed)
	}
	if err := p.pause(ctx, p.opts.StepDelay); err != nil {
		return nil, err
	}

	_, all, err := p.frames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: login frame: %w", repository.ErrNavigationFailed, err)
	}
	var frame *cdp.Node
	if len(all) > 0 {
		frame = all[0]
	}
	if err := chromedp.Run(ctx, chromedp.WaitVisible("#uid", chromedp.ByQuery, chromedp.FromNode(frame))); err != nil {
		return nil, fmt.Errorf("%w: login form: %w", repository.ErrNavigationFailed, err)
	}
	return frame, nil
}

// captchaImage returns a PNG screenshot of the CAPTCHA element together with
// its absolute source URL.
func (p *ChromedpPortal) captchaImage(ctx context.Context, frame *cdp.Node) ([]byte, string, error) {
	var (
		image []byte
		src   string
		ok    bool
	)
	err := chromedp.Run(ctx,
		chromedp.WaitVisible("#captchaimg", chromedp.ByQuery, chromedp.FromNode(frame)),
		chromedp.AttributeValue("#captchaimg", "src", &src, &ok, chromedp.ByQuery, chromedp.FromNode(frame)),
		chromedp.Screenshot("#captchaimg", &image, chromedp.ByQuery, chromedp.FromNode(frame)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("%w: captcha image: %w", repository.ErrNavigationFailed, err)
	}
	if ok {
		if abs, err := utils.ToAbsoluteURL(p.opts.BaseURL, src); err == nil {
			src = abs
		}
	}
	return image, src, nil
}

func (p *ChromedpPortal) login(ctx context.Context, creds entity.Credentials, in repository.Interaction) error {
	frame, err := p.openLogin(ctx)
	if err != nil {
		return err
	}
	if err := chromedp.Run(ctx,
		chromedp.SendKeys("#uid", creds.RollNo, chromedp.ByQuery, chromedp.FromNode(frame)),
		chromedp.SendKeys("#pwd", creds.Password, chromedp.ByQuery, chromedp.FromNode(frame)),
	); err != nil {
		return fmt.Errorf("%w: fill credentials: %w", repository.ErrLoginFailed, err)
	}

	image, _, err := p.captchaImage(ctx, frame)
	if err != nil {
		p.logger.Warn("Captcha image unavailable, solver gets no image", zap.Error(err))
	}
	text, err := in.SolveCaptcha(ctx, image)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrCaptchaRequired, err)
	}
	if strings.TrimSpace(text) == "" {
		return repository.ErrCaptchaRequired
	}

	if err := chromedp.Run(ctx, chromedp.SendKeys("#cap", strings.TrimSpace(text), chromedp.ByQuery, chromedp.FromNode(frame))); err != nil {
		return fmt.Errorf("%w: fill captcha: %w", repository.ErrLoginFailed, err)
	}
	if err := p.callNth(ctx, frame, "#login", 0, jsClick); err != nil {
		return fmt.Errorf("%w: submit: %w", repository.ErrLoginFailed, err)
	}
	if err := p.pause(ctx, 2*p.opts.StepDelay); err != nil {
		return err
	}
	return p.checkLoggedIn(ctx)
}

// checkLoggedIn fails when the first frame still shows the login form, which
// is how the portal rejects a login.
func (p *ChromedpPortal) checkLoggedIn(ctx context.Context) error {
	_, all, err := p.frames(ctx)
	if err != nil {
		return fmt.Errorf("%w: after login: %w", repository.ErrNavigationFailed, err)
	}
	var first *cdp.Node
	if len(all) > 0 {
		first = all[0]
	}
	if doc, err := p.document(ctx, first); err == nil && loginFormPresent(doc) {
		return repository.ErrLoginFailed
	}
	return nil
}

// navigate clicks a menu link, falling back to a manual step.
func (p *ChromedpPortal) navigate(ctx context.Context, in repository.Interaction, keywords []string, exact bool, instruction string) error {
	found, err := p.clickLink(ctx, keywords, exact)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", repository.ErrNavigationFailed, keywords[0], err)
	}
	if !found {
		if err := p.manual(ctx, in, instruction); err != nil {
			return fmt.Errorf("%w: %s: %w", repository.ErrNavigationFailed, keywords[0], err)
		}
	}
	return p.pause(ctx, p.opts.StepDelay)
}

// expandAttendance opens the collapsed "Attendance" branch of the menu tree.
func (p *ChromedpPortal) expandAttendance(ctx context.Context, in repository.Interaction) error {
	targets, err := p.targets(ctx, navFrames, true)
	if err != nil {
		return fmt.Errorf("%w: attendance menu: %w", repository.ErrNavigationFailed, err)
	}
	for _, t := range targets {
		doc, err := p.document(ctx, t.node)
		if err != nil {
			continue
		}
		if i := hitareaIndex(doc, attendanceKey); i >= 0 {
			if err := p.callNth(ctx, t.node, hitareaSelector, i, jsClick); err != nil {
				return fmt.Errorf("%w: attendance menu: %w", repository.ErrNavigationFailed, err)
			}
			return p.pause(ctx, p.opts.StepDelay)
		}
	}

	if err := p.manual(ctx, in, "Expand the 'Attendance' menu"); err != nil {
		return fmt.Errorf("%w: attendance menu: %w", repository.ErrNavigationFailed, err)
	}
	return p.pause(ctx, p.opts.StepDelay)
}

// submitTerm selects year and semester by index and submits the form.
func (p *ChromedpPortal) submitTerm(ctx context.Context, term entity.Term, in repository.Interaction) error {
	targets, err := p.targets(ctx, captureOrder, false)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrFormNotFound, err)
	}
	for _, t := range targets {
		doc, err := p.document(ctx, t.node)
		if err != nil {
			continue
		}
		form, ok := findTermForm(doc)
		if !ok {
			continue
		}
		if term.Year >= form.yearOptions || term.Semester >= form.semOptions {
			return fmt.Errorf("%w: year %d semester %d out of range (%d/%d options)",
				repository.ErrFormNotFound, term.Year, term.Semester, form.yearOptions, form.semOptions)
		}

		settle := p.opts.StepDelay / 3
		if err := p.callNth(ctx, t.node, selectSelector, form.year, jsSelectIndex, term.Year); err != nil {
			return fmt.Errorf("%w: year: %w", repository.ErrFormNotFound, err)
		}
		if err := p.pause(ctx, settle); err != nil {
			return err
		}
		if err := p.callNth(ctx, t.node, selectSelector, form.semester, jsSelectIndex, term.Semester); err != nil {
			return fmt.Errorf("%w: semester: %w", repository.ErrFormNotFound, err)
		}
		if err := p.pause(ctx, settle); err != nil {
			return err
		}
		if err := p.callNth(ctx, t.node, buttonSelector, form.submit, jsClick); err != nil {
			return fmt.Errorf("%w: submit: %w", repository.ErrFormNotFound, err)
		}
		p.logger.Debug("Submitted term form", zap.String("frame", t.name))
		return p.pause(ctx, p.opts.StepDelay)
	}

	if err := p.manual(ctx, in, "Select the year and semester, then click Submit"); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrFormNotFound, err)
	}
	return p.pause(ctx, p.opts.StepDelay)
}

// captureFrames returns the markup of every known frame, with a viewport
// screenshot attached when requested.
func (p *ChromedpPortal) captureFrames(ctx context.Context, opts repository.FetchOptions) ([]entity.Frame, error) {
	var shot []byte
	if opts.Screenshots {
		if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&shot)); err != nil {
			p.logger.Warn("Screenshot failed", zap.Error(err))
		}
	}

	targets, err := p.targets(ctx, captureOrder, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrNoAttendanceData, err)
	}
	var frames []entity.Frame
	for _, t := range targets {
		html, err := p.outerHTML(ctx, t.node)
		if err != nil {
			p.logger.Warn("Could not read frame", zap.String("frame", t.name), zap.Error(err))
			continue
		}
		frames = append(frames, entity.Frame{Name: t.name, HTML: html, Screenshot: shot})
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frame could be captured", repository.ErrNoAttendanceData)
	}
	return frames, nil
}
