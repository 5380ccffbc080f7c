package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/podfetch/authgate/internal/core/domain"
)

func TestPrintIdentities(t *testing.T) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)

	printIdentities(c, []domain.IdentityView{
		{Username: "alice", Role: domain.RoleUploader, ExplicitConsent: true, CreatedAt: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{Username: "bob", Role: domain.RoleRegular},
	})

	out := buf.String()
	for _, want := range []string{"USERNAME", "alice", "uploader", "2026-03-04", "bob", "user"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintIdentities_Empty(t *testing.T) {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)

	printIdentities(c, nil)
	if !strings.Contains(buf.String(), "no stored identities") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestUserCommands_Registered(t *testing.T) {
	want := map[string]bool{"add": false, "list": false, "delete": false, "set-role": false}
	for _, c := range userCmd.Commands() {
		want[c.Name()] = true
	}
	for name, ok := range want {
		if !ok {
			t.Fatalf("user %s not registered", name)
		}
	}
}

func TestUserAdd_RoleDefault(t *testing.T) {
	f := userAddCmd.Flags().Lookup("role")
	if f == nil || f.DefValue != "user" {
		t.Fatalf("unexpected role flag: %+v", f)
	}
}

type closeFunc func(context.Context) error

func (f closeFunc) Close(ctx context.Context) error { return f(ctx) }

func TestCloseApp_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	closeApp(context.Background(), closeFunc(func(context.Context) error {
		return errors.New("disk gone")
	}), zerolog.New(&buf))

	if !strings.Contains(buf.String(), "disk gone") || !strings.Contains(buf.String(), "close stores") {
		t.Fatalf("unexpected log output: %q", buf.String())
	}

	buf.Reset()
	closeApp(context.Background(), closeFunc(func(context.Context) error { return nil }), zerolog.New(&buf))
	if buf.Len() != 0 {
		t.Fatalf("clean close should not log, got %q", buf.String())
	}
}
