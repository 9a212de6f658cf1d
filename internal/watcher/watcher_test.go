package watcher

import (
	"testing"
	"time"
)

func TestOperationString(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpCreate, "CREATE"},
		{OpModify, "MODIFY"},
		{OpDelete, "DELETE"},
		{OpRename, "RENAME"},
		{OpConfigChange, "CONFIG_CHANGE"},
		{Operation(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Operation(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestIsDumpFile(t *testing.T) {
	tests := []struct {
		base string
		want bool
	}{
		{"stripped", true},
		{"stripped.gz", true},
		{"names", true},
		{"names.gz", true},
		{"keywords", true},
		{"keywords.gz", true},
		{"stripped.bak", false},
		{"readme.txt", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDumpFile(tt.base); got != tt.want {
			t.Errorf("IsDumpFile(%q) = %v, want %v", tt.base, got, tt.want)
		}
	}
}

func TestIsConfigFile(t *testing.T) {
	if !IsConfigFile(".oeismatch.yaml") || !IsConfigFile(".oeismatch.yml") {
		t.Error("config file names should be recognized")
	}
	if IsConfigFile("config.yaml") {
		t.Error("unrelated yaml should not be recognized as config")
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.DebounceWindow != 200*time.Millisecond {
		t.Errorf("DebounceWindow = %v", opts.DebounceWindow)
	}
	if opts.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v", opts.PollInterval)
	}
	if opts.EventBufferSize != 1000 {
		t.Errorf("EventBufferSize = %d", opts.EventBufferSize)
	}
	if opts.AllFiles {
		t.Error("AllFiles should default to false")
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{DebounceWindow: time.Second}.WithDefaults()
	if opts.DebounceWindow != time.Second {
		t.Errorf("explicit DebounceWindow overwritten: %v", opts.DebounceWindow)
	}
	if opts.PollInterval != 5*time.Second {
		t.Errorf("PollInterval default missing: %v", opts.PollInterval)
	}
	if opts.EventBufferSize != 1000 {
		t.Errorf("EventBufferSize default missing: %d", opts.EventBufferSize)
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := (Options{}).Validate(); err != nil {
		t.Errorf("zero options should validate: %v", err)
	}
}
