package main

import "testing"

func TestRunFlagsOmitsUnsetFlags(t *testing.T) {
	restore := func(u, d, l string, h bool) func() {
		return func() { runUsername, dataDir, logLevel, headless = u, d, l, h }
	}(runUsername, dataDir, logLevel, headless)
	t.Cleanup(restore)

	// All defaults: the overlay must be empty so config-file and env
	// values survive the merge.
	runUsername, dataDir, logLevel, headless = "", "", "info", false
	if flags := runFlags(); len(flags) != 0 {
		t.Errorf("overlay for default flags = %v, want empty", flags)
	}

	runUsername = "someone"
	dataDir = "/tmp/data"
	logLevel = "debug"
	headless = true

	flags := runFlags()
	if flags["username"] != "someone" {
		t.Errorf("username = %v", flags["username"])
	}
	if flags["data-dir"] != "/tmp/data" {
		t.Errorf("data-dir = %v", flags["data-dir"])
	}
	if flags["log-level"] != "debug" {
		t.Errorf("log-level = %v", flags["log-level"])
	}
	if flags["headless"] != true {
		t.Errorf("headless = %v", flags["headless"])
	}
}
