package version

import "testing"

func TestUserAgent(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	if got := UserAgent(); got != "pinsearch/dev (unknown)" {
		t.Errorf("default UserAgent() = %q", got)
	}

	Version, Commit = "1.4.0", "abc123"
	if got := UserAgent(); got != "pinsearch/1.4.0 (abc123)" {
		t.Errorf("UserAgent() = %q", got)
	}
}
