// Package lineworks posts the report to a LINE WORKS talk room by driving
// a headless Chrome through the web client, the same way a person would:
// log in, open the talk app, pick the room, type, press Ctrl+Enter.
package lineworks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultLoginURL opens the login form and returns to the talk app.
const DefaultLoginURL = "https://auth.worksmobile.com/login/login?accessUrl=https%3A%2F%2Ftalk.worksmobile.com%2F%23%2F"

const defaultStepTimeout = 60 * time.Second

// Config holds the account, target room and browser settings.
type Config struct {
	LoginURL     string
	ID           string
	Password     string
	Room         string
	ChromeBinary string
	ShowBrowser  bool
	// Timeout bounds each wait for an element to appear.
	Timeout time.Duration
}

// selector is a CSS selector or, when xpath is set, an XPath expression.
type selector struct {
	expr  string
	xpath bool
}

func css(s string) selector   { return selector{expr: s} }
func xpath(s string) selector { return selector{expr: s, xpath: true} }

var (
	loginIDField   = []selector{css("input[name='loginId']"), css("input[type='text']")}
	submitButton   = []selector{css("button[type='submit']"), xpath("//button[contains(., 'ログイン')]")}
	passwordField  = css("input[type='password']")
	talkLink       = css("a[href*='talk.worksmobile.com']")
	channelItem    = css("li[data-role='channel-item']")
	messageEditor  = css("div.editor_input.message-input")
)

const sendSettleTime = 2 * time.Second

// Poster is a delivery.Deliverer for LINE WORKS.
type Poster struct {
	cfg    Config
	logger *slog.Logger
}

// NewPoster checks cfg and fills defaults.
func NewPoster(cfg Config, logger *slog.Logger) (*Poster, error) {
	if cfg.ID == "" || cfg.Password == "" {
		return nil, errors.New("lineworks: id and password are required")
	}
	if strings.TrimSpace(cfg.Room) == "" {
		return nil, errors.New("lineworks: room is required")
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultStepTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poster{cfg: cfg, logger: logger}, nil
}

// Name implements delivery.Deliverer.
func (p *Poster) Name() string { return "lineworks" }

// Deliver launches a browser, posts message and shuts the browser down.
// The browser is always closed, whether or not the post succeeded.
func (p *Poster) Deliver(ctx context.Context, message string) error {
	l := p.launcher().Context(ctx)
	p.logger.Info("starting browser", "headless", !p.cfg.ShowBrowser)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: p.cfg.LoginURL})
	if err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	return p.post(page, message)
}

func (p *Poster) launcher() *launcher.Launcher {
	l := launcher.New().
		Headless(!p.cfg.ShowBrowser).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("window-size", "1280,900")
	if p.cfg.ChromeBinary != "" {
		l = l.Bin(p.cfg.ChromeBinary)
	}
	return l
}

// post runs the web client flow on an already opened login page.
func (p *Poster) post(page *rod.Page, message string) error {
	p.logger.Debug("entering login id")
	idField, err := p.find(page, loginIDField...)
	if err != nil {
		return fmt.Errorf("login id field: %w", err)
	}
	if err := idField.Input(p.cfg.ID); err != nil {
		return fmt.Errorf("enter login id: %w", err)
	}
	if err := p.click(page, submitButton...); err != nil {
		return fmt.Errorf("submit login id: %w", err)
	}

	p.logger.Debug("entering password")
	scope, err := p.passwordScope(page)
	if err != nil {
		return err
	}
	pwField, err := p.find(scope, passwordField)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := pwField.Input(p.cfg.Password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := p.click(scope, submitButton...); err != nil {
		return fmt.Errorf("submit password: %w", err)
	}

	p.logger.Debug("opening talk")
	if err := p.openTalk(page); err != nil {
		return err
	}

	p.logger.Debug("selecting room", "room", p.cfg.Room)
	room, err := page.Timeout(p.cfg.Timeout).ElementR(channelItem.expr, regexp.QuoteMeta(p.cfg.Room))
	if err != nil {
		return fmt.Errorf("room %q not found: %w", p.cfg.Room, err)
	}
	if err := room.CancelTimeout().Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("select room: %w", err)
	}

	p.logger.Debug("typing message", "runes", len([]rune(message)))
	editor, err := p.find(page, messageEditor)
	if err != nil {
		return fmt.Errorf("message editor: %w", err)
	}
	if err := editor.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("focus editor: %w", err)
	}
	if err := typeLines(page, message); err != nil {
		return fmt.Errorf("type message: %w", err)
	}

	if err := page.KeyActions().Press(input.ControlLeft).Type(input.Enter).Do(); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	// Give the client a moment to push the message before the browser
	// goes away; an error here only means the page never went idle.
	_ = page.WaitIdle(sendSettleTime)

	p.logger.Info("report posted", "room", p.cfg.Room)
	return nil
}

// typeLines enters message into the focused editor one line at a time. A
// plain Enter starts a new line; only Ctrl+Enter sends.
func typeLines(page *rod.Page, message string) error {
	for i, line := range strings.Split(message, "\n") {
		if i > 0 {
			if err := page.Keyboard.Type(input.Enter); err != nil {
				return err
			}
		}
		if line == "" {
			continue
		}
		if err := page.InsertText(line); err != nil {
			return err
		}
	}
	return nil
}

// passwordScope returns the page or frame that holds the password field.
// Some tenants render the second login step inside an iframe.
func (p *Poster) passwordScope(page *rod.Page) (*rod.Page, error) {
	if _, err := p.find(page, passwordField, css("iframe")); err != nil {
		return nil, fmt.Errorf("password step did not load: %w", err)
	}
	if has, _, err := page.Has(passwordField.expr); err == nil && has {
		return page, nil
	}
	frames, err := page.Elements("iframe")
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	for _, f := range frames {
		fp, err := f.Frame()
		if err != nil {
			continue
		}
		loading := fp.Timeout(p.cfg.Timeout)
		err = loading.WaitLoad()
		loading.CancelTimeout()
		if err != nil {
			continue
		}
		if has, _, err := fp.Has(passwordField.expr); err == nil && has {
			p.logger.Debug("password field is inside a frame")
			return fp, nil
		}
	}
	return page, nil
}

// openTalk follows the talk link unless the login already landed in the
// talk app.
func (p *Poster) openTalk(page *rod.Page) error {
	el, err := p.find(page, talkLink, channelItem)
	if err != nil {
		return fmt.Errorf("talk app did not load: %w", err)
	}
	if ok, err := el.Matches(talkLink.expr); err != nil || !ok {
		return nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("open talk: %w", err)
	}
	return nil
}

// find waits up to the step timeout for the first of sels to appear.
func (p *Poster) find(page *rod.Page, sels ...selector) (*rod.Element, error) {
	race := page.Timeout(p.cfg.Timeout).Race()
	for _, s := range sels {
		if s.xpath {
			race = race.ElementX(s.expr)
		} else {
			race = race.Element(s.expr)
		}
	}
	el, err := race.Do()
	if err != nil {
		return nil, fmt.Errorf("none of %s appeared: %w", describe(sels), err)
	}
	return el.CancelTimeout(), nil
}

func (p *Poster) click(page *rod.Page, sels ...selector) error {
	el, err := p.find(page, sels...)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func describe(sels []selector) string {
	parts := make([]string, len(sels))
	for i, s := range sels {
		parts[i] = fmt.Sprintf("%q", s.expr)
	}
	return strings.Join(parts, ", ")
}
