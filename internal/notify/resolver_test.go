package notify_test

import (
	"testing"

	"github.com/notifyhub/flagnotify/internal/notify"
)

func strptr(s string) *string { return &s }

// The precedence chain has one deliberate asymmetry: a locale-level
// channel override only applies when the channel has a BASE override.
// Without a base override the locale-default / global-default chain wins,
// regardless of any locale-level channel value.
func TestResolve_SubjectPrecedence(t *testing.T) {
	tests := []struct {
		name string
		src  notify.TemplateSource
		want string
	}{
		{
			name: "base channel override wins without locale channel override",
			src: notify.TemplateSource{
				ChannelSubject:       "A",
				LocaleDefaultSubject: strptr("D"),
				DefaultSubject:       "C",
			},
			want: "A",
		},
		{
			name: "locale channel override wins over base channel override",
			src: notify.TemplateSource{
				ChannelSubject:       "A",
				LocaleChannelSubject: strptr("B"),
				LocaleDefaultSubject: strptr("D"),
				DefaultSubject:       "C",
			},
			want: "B",
		},
		{
			name: "no base override falls to locale default",
			src: notify.TemplateSource{
				LocaleDefaultSubject: strptr("D"),
				DefaultSubject:       "C",
			},
			want: "D",
		},
		{
			name: "no base override and no locale default falls to global default",
			src: notify.TemplateSource{
				DefaultSubject: "C",
			},
			want: "C",
		},
		{
			name: "locale channel override ignored when channel has no base override",
			src: notify.TemplateSource{
				LocaleChannelSubject: strptr("B"),
				LocaleDefaultSubject: strptr("D"),
				DefaultSubject:       "C",
			},
			want: "D",
		},
		{
			name: "locale channel override ignored without base override even when locale default absent",
			src: notify.TemplateSource{
				LocaleChannelSubject: strptr("B"),
				DefaultSubject:       "C",
			},
			want: "C",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subject, _ := notify.Resolve(tc.src)
			if subject != tc.want {
				t.Fatalf("resolved subject = %q, want %q", subject, tc.want)
			}
		})
	}
}

// Subject and body resolve independently: a channel overriding only the
// subject still takes its body from the default chain.
func TestResolve_SubjectAndBodyIndependent(t *testing.T) {
	src := notify.TemplateSource{
		ChannelSubject:    "channel subject",
		LocaleDefaultBody: strptr("locale body"),
		DefaultSubject:    "default subject",
		DefaultBody:       "default body",
	}

	subject, body := notify.Resolve(src)
	if subject != "channel subject" {
		t.Fatalf("subject = %q, want channel override", subject)
	}
	if body != "locale body" {
		t.Fatalf("body = %q, want locale default", body)
	}
}

func TestDedupTracker(t *testing.T) {
	d := notify.NewDedupTracker()

	if d.Seen(1) {
		t.Fatal("fresh tracker should not have seen anyone")
	}
	d.Mark(1)
	if !d.Seen(1) {
		t.Fatal("marked recipient should be seen")
	}
	if d.Seen(2) {
		t.Fatal("unmarked recipient should not be seen")
	}
}
