package instagram

import "testing"

func TestProfileURL(t *testing.T) {
	tests := []struct {
		username string
		want     string
	}{
		{"johndoe", "https://www.instagram.com/johndoe"},
		{"user.name_123", "https://www.instagram.com/user.name_123"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ProfileURL(tt.username); got != tt.want {
			t.Errorf("ProfileURL(%q) = %q, want %q", tt.username, got, tt.want)
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		username string
		want     bool
	}{
		{"johndoe", true},
		{"user.name", true},
		{"user_name_123", true},
		{"", false},
		{"user name", false},
		{"user@name", false},
		{"thisusernameiswaytoolongtobevalid", false},
	}

	for _, tt := range tests {
		if got := IsValidUsername(tt.username); got != tt.want {
			t.Errorf("IsValidUsername(%q) = %v, want %v", tt.username, got, tt.want)
		}
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"@johndoe", "johndoe"},
		{"johndoe/", "johndoe"},
		{"johndoe ", "johndoe"},
		{"@johndoe/ ", "johndoe"},
		{"johndoe", "johndoe"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeUsername(tt.input); got != tt.want {
			t.Errorf("SanitizeUsername(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestControlLocatorsCoverAllKinds(t *testing.T) {
	kinds := []ControlKind{
		ControlFollow, ControlUnfollow, ControlUnfollowConfirm,
		ControlLoginSubmit, ControlDialogClose,
		ControlFollowersTab, ControlFollowingTab,
		ControlSaveInfoDismiss, ControlNotNowDismiss,
	}
	for _, k := range kinds {
		if len(controlLocators[k]) == 0 {
			t.Errorf("no locators registered for %s", k)
		}
	}
}

func TestSignalLocatorsCoverAllSignals(t *testing.T) {
	signals := []Signal{
		SignalActionBlocked, SignalTryAgainLater, SignalPrivateAccount,
		SignalNotFound, SignalEmptyAccount, SignalLoginForm,
	}
	for _, s := range signals {
		if len(signalLocators[s]) == 0 {
			t.Errorf("no locators registered for %s", s)
		}
	}
}
