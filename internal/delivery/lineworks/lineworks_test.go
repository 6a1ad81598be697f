package lineworks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

func TestNewPoster_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing id", Config{Password: "pw", Room: "r"}},
		{"missing password", Config{ID: "id", Room: "r"}},
		{"missing room", Config{ID: "id", Password: "pw"}},
		{"blank room", Config{ID: "id", Password: "pw", Room: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPoster(tt.cfg, nil); err == nil {
				t.Error("NewPoster() should fail")
			}
		})
	}
}

func TestNewPoster_Defaults(t *testing.T) {
	p, err := NewPoster(Config{ID: "id", Password: "pw", Room: "●Team"}, nil)
	if err != nil {
		t.Fatalf("NewPoster() error: %v", err)
	}
	if p.cfg.LoginURL != DefaultLoginURL {
		t.Errorf("LoginURL = %q", p.cfg.LoginURL)
	}
	if p.cfg.Timeout != defaultStepTimeout {
		t.Errorf("Timeout = %v", p.cfg.Timeout)
	}
	if p.Name() != "lineworks" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestLauncherFlags(t *testing.T) {
	p, _ := NewPoster(Config{ID: "id", Password: "pw", Room: "r", ChromeBinary: "/opt/chrome"}, nil)
	l := p.launcher()
	for _, flag := range []string{"headless", "no-sandbox", "disable-gpu", "disable-dev-shm-usage"} {
		if !l.Has(flags.Flag(flag)) {
			t.Errorf("launcher missing --%s", flag)
		}
	}
	if got := l.Get("window-size"); got != "1280,900" {
		t.Errorf("window-size = %q", got)
	}
	if l.Get("rod-bin") != "/opt/chrome" {
		t.Errorf("browser binary not set: %q", l.Get("rod-bin"))
	}

	shown, _ := NewPoster(Config{ID: "id", Password: "pw", Room: "r", ShowBrowser: true}, nil)
	if shown.launcher().Has(flags.Flag("headless")) {
		t.Error("ShowBrowser should disable headless mode")
	}
}

func TestDescribe(t *testing.T) {
	got := describe(submitButton)
	if !strings.Contains(got, "button[type='submit']") || !strings.Contains(got, "ログイン") {
		t.Errorf("describe() = %q", got)
	}
}

// fakeTenant serves a minimal imitation of the web client: a login id
// form, a password form inside an iframe, a home page with the talk
// link, and a room list with an editor that posts on Ctrl+Enter.
type fakeTenant struct {
	mu       sync.Mutex
	loginID  string
	password string
	room     string
	sent     []string
}

func (f *fakeTenant) handler() http.Handler {
	page := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!DOCTYPE html><html><head><meta charset=\"utf-8\"></head><body>%s</body></html>", body)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		page(w, `<form action="/password"><input name="loginId"><button type="submit">次へ</button></form>`)
	})
	mux.HandleFunc("/password", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.loginID = r.URL.Query().Get("loginId")
		f.mu.Unlock()
		page(w, `<iframe src="/frame"></iframe>`)
	})
	mux.HandleFunc("/frame", func(w http.ResponseWriter, r *http.Request) {
		page(w, `<form action="/home" target="_top"><input type="password" name="pw"><button>ログイン</button></form>`)
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.password = r.URL.Query().Get("pw")
		f.mu.Unlock()
		page(w, `<a href="/talk?via=talk.worksmobile.com">トーク</a>`)
	})
	mux.HandleFunc("/talk", func(w http.ResponseWriter, r *http.Request) {
		page(w, `<ul>
<li data-role="channel-item">総務</li>
<li data-role="channel-item">●Team柳</li>
</ul>
<div class="editor_input message-input" contenteditable="true" style="min-height:2em"></div>
<script>
let room = "";
document.querySelectorAll("li").forEach(li => li.addEventListener("click", () => { room = li.textContent; }));
const ed = document.querySelector(".message-input");
ed.addEventListener("keydown", e => {
  if (e.key === "Enter" && e.ctrlKey) {
    e.preventDefault();
    const x = new XMLHttpRequest();
    x.open("POST", "/sent?room=" + encodeURIComponent(room), false);
    x.send(ed.innerText);
    ed.innerHTML = "";
  }
});
</script>`)
	})
	mux.HandleFunc("/sent", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.room = r.URL.Query().Get("room")
		f.sent = append(f.sent, string(body))
		f.mu.Unlock()
	})
	return mux
}

func TestDeliver_FakeTenant(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a browser")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chrome or Chromium found")
	}

	tenant := &fakeTenant{}
	srv := httptest.NewServer(tenant.handler())
	defer srv.Close()

	p, err := NewPoster(Config{
		LoginURL:     srv.URL + "/login",
		ID:           "user@example",
		Password:     "s3cret",
		Room:         "●Team柳",
		ChromeBinary: bin,
		Timeout:      20 * time.Second,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	msg := "【クレド報告】\n山田\n＜気づき＞\n気づき：今日は小さな改善に気づいた。"
	if err := p.Deliver(ctx, msg); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}

	tenant.mu.Lock()
	defer tenant.mu.Unlock()
	if tenant.loginID != "user@example" || tenant.password != "s3cret" {
		t.Errorf("credentials = %q / %q", tenant.loginID, tenant.password)
	}
	if tenant.room != "●Team柳" {
		t.Errorf("room = %q", tenant.room)
	}
	if len(tenant.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(tenant.sent))
	}
	got := tenant.sent[0]
	if !strings.HasPrefix(got, "【クレド報告】") || !strings.Contains(got, "気づき：今日は小さな改善に気づいた。") {
		t.Errorf("sent text = %q", got)
	}
	if strings.Count(got, "\n") < 3 {
		t.Errorf("line breaks lost: %q", got)
	}
}
