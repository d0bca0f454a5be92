package logging

import (
	"bytes"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

func TestLogHelpers(t *testing.T) {
	var b bytes.Buffer

	restore := L
	defer func() { L = restore }()

	L = clog.New(&b)
	L.SetLevel(clog.DebugLevel)

	Debugf("debug %v", "qwerty")
	Infof("info %v", 54321)
	Warnf("warn %v", "uiop")
	Errorf("error %v", "asdf")

	tests := []string{
		"debug qwerty",
		"info 54321",
		"warn uiop",
		"error asdf",
	}

	for _, expected := range tests {
		if !strings.Contains(b.String(), expected) {
			t.Errorf("Incorrect log output\n   expected: %v\n   got:      %v\n", expected, b.String())
		}
	}
}

func TestSetDebug(t *testing.T) {
	var b bytes.Buffer

	restore := L
	defer func() { L = restore }()

	L = clog.New(&b)

	SetDebug(false)
	Debugf("suppressed")

	if strings.Contains(b.String(), "suppressed") {
		t.Errorf("Unexpected debug output with debug disabled\n   got: %v\n", b.String())
	}

	SetDebug(true)
	Debugf("emitted")

	if !strings.Contains(b.String(), "emitted") {
		t.Errorf("Incorrect log output\n   expected: %v\n   got:      %v\n", "emitted", b.String())
	}
}
