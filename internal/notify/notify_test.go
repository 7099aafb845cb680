package notify

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/sketchbot/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	orig := sender
	sender = func(title, body string, opts platform.Options) error {
		s := sent{title: title, body: body, opts: opts}
		if opts.IconPath != "" {
			_, err := os.Stat(opts.IconPath)
			s.iconExisted = err == nil
		}
		got = append(got, s)
		return nil
	}
	t.Cleanup(func() { sender = orig })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Done("cat.png", nil)
	n.Save("out.png")
	n.Copy("")
	var nilNotifier *Notifier
	nilNotifier.Done("x", nil)
	if len(*got) != 0 {
		t.Fatalf("expected no notifications, got %+v", *got)
	}
}

func TestDoneAttachesPreview(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventDone, true)
	n.Done("cat.png", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	s := (*got)[0]
	if s.title != "sketchbot" || s.body != "Finished drawing cat.png" {
		t.Fatalf("unexpected notification %+v", s)
	}
	if !s.iconExisted {
		t.Fatalf("preview icon missing during dispatch")
	}
	if _, err := os.Stat(s.opts.IconPath); !os.IsNotExist(err) {
		t.Fatalf("preview %s not cleaned up", s.opts.IconPath)
	}
}

func TestSaveUsesAbsolutePath(t *testing.T) {
	got := capture(t)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	n.Save(path)
	if len(*got) != 1 || (*got)[0].body != "Saved "+path || (*got)[0].opts.IconPath != path {
		t.Fatalf("unexpected notifications %+v", *got)
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("SKETCHBOT_NOTIFY_TITLE", "Bot")
	t.Setenv("SKETCHBOT_NOTIFY_COPY_TEXT", "Clipboard has %s")
	got := capture(t)
	n := New(LoadPreferences())
	n.Enable(EventCopy, true)
	n.Copy("")
	if len(*got) != 1 || (*got)[0].title != "Bot" || (*got)[0].body != "Clipboard has drawing" {
		t.Fatalf("unexpected notifications %+v", *got)
	}
}
