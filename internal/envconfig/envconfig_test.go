package envconfig

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("OPENIMAJ_GRABBER_READ")
	os.Unsetenv("OPENIMAJ_GRABBER_VERBOSE")

	cfg := Load()
	if cfg.ForceRead {
		t.Error("ForceRead should default to false when unset")
	}
	if cfg.Verbose {
		t.Error("Verbose should default to false when unset")
	}
}

func TestLoadForceRead(t *testing.T) {
	t.Setenv("OPENIMAJ_GRABBER_READ", "1")
	t.Setenv("OPENIMAJ_GRABBER_VERBOSE", "")

	cfg := Load()
	if !cfg.ForceRead {
		t.Error("ForceRead should be true when OPENIMAJ_GRABBER_READ=1")
	}
}

func TestLoadVerbose(t *testing.T) {
	t.Setenv("OPENIMAJ_GRABBER_VERBOSE", "true")

	cfg := Load()
	if !cfg.Verbose {
		t.Error("Verbose should be true when OPENIMAJ_GRABBER_VERBOSE=true")
	}
}

func TestLoadFalseyValuesDoNotEnable(t *testing.T) {
	t.Setenv("OPENIMAJ_GRABBER_READ", "false")
	t.Setenv("OPENIMAJ_GRABBER_VERBOSE", "0")

	cfg := Load()
	if cfg.ForceRead {
		t.Error("OPENIMAJ_GRABBER_READ=false should not enable ForceRead")
	}
	if cfg.Verbose {
		t.Error("OPENIMAJ_GRABBER_VERBOSE=0 should not enable Verbose")
	}
}
