package entities

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPendingJob_CleanupRemovesOwnedAndLeftovers(t *testing.T) {
	dir := t.TempDir()
	job := NewPendingJob(dir, "https://example.com/v", MediaVideo)

	owned := job.TempPath(".mp4")
	leftover := filepath.Join(dir, job.ID+".f137.part")
	unrelated := filepath.Join(dir, "other.mp4")

	for _, p := range []string{owned, leftover, unrelated} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	if failed := job.Cleanup(); len(failed) != 0 {
		t.Fatalf("unexpected cleanup failures: %v", failed)
	}

	for _, p := range []string{owned, leftover} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", p)
		}
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("unrelated file must survive: %v", err)
	}
}

func TestPendingJob_CleanupIsIdempotent(t *testing.T) {
	job := NewPendingJob(t.TempDir(), "q", MediaAudio)
	job.Own(filepath.Join(job.Dir, "never-created.mp3"))

	if failed := job.Cleanup(); len(failed) != 0 {
		t.Fatalf("missing files are not failures: %v", failed)
	}
	if failed := job.Cleanup(); len(failed) != 0 {
		t.Fatalf("second cleanup should be a no-op: %v", failed)
	}
}

func TestMemberStatus(t *testing.T) {
	tests := []struct {
		status     MemberStatus
		subscribed bool
		privileged bool
	}{
		{MemberStatusOwner, true, true},
		{MemberStatusAdministrator, true, true},
		{MemberStatusMember, true, false},
		{MemberStatusRestricted, false, false},
		{MemberStatusLeft, false, false},
		{MemberStatusBanned, false, false},
	}

	for _, tt := range tests {
		if got := tt.status.IsSubscribed(); got != tt.subscribed {
			t.Errorf("%s.IsSubscribed() = %v, want %v", tt.status, got, tt.subscribed)
		}
		if got := tt.status.IsPrivileged(); got != tt.privileged {
			t.Errorf("%s.IsPrivileged() = %v, want %v", tt.status, got, tt.privileged)
		}
	}
}

func TestChatInfo_CanonicalURL(t *testing.T) {
	if got := (ChatInfo{InviteLink: "https://t.me/+abc", Username: "news"}).CanonicalURL("x"); got != "https://t.me/+abc" {
		t.Errorf("invite link should win, got %s", got)
	}
	if got := (ChatInfo{Username: "news"}).CanonicalURL("x"); got != "https://t.me/news" {
		t.Errorf("username link expected, got %s", got)
	}
	if got := (ChatInfo{}).CanonicalURL("-100123"); got != "-100123" {
		t.Errorf("fallback expected, got %s", got)
	}
}
