package logger

import (
	"strings"
	"testing"

	"github.com/user/framecast/pkg/ports"
)

func TestConsoleFormatPlain(t *testing.T) {
	l := &ConsoleLogger{level: ports.LevelDebug, color: false}

	if got := l.format(ports.LevelInfo, "hello"); got != "hello" {
		t.Errorf("plain format = %q, want %q", got, "hello")
	}

	withComp := &ConsoleLogger{level: ports.LevelDebug, component: "Engine", color: false}
	if got := withComp.format(ports.LevelInfo, "hello"); got != "[Engine] hello" {
		t.Errorf("component format = %q, want %q", got, "[Engine] hello")
	}
}

func TestConsoleFormatColored(t *testing.T) {
	l := &ConsoleLogger{level: ports.LevelDebug, component: "Engine", color: true}

	got := l.format(ports.LevelError, "boom")
	if !strings.HasPrefix(got, colorRed) || !strings.HasSuffix(got, colorReset) {
		t.Errorf("error line not wrapped in red: %q", got)
	}
	if !strings.Contains(got, colorCyan+"[Engine]"+colorReset) {
		t.Errorf("component not colored cyan: %q", got)
	}

	if got := l.format(ports.LevelInfo, "ok"); strings.HasPrefix(got, colorGray) {
		t.Errorf("info line should not be gray: %q", got)
	}
}

func TestConsoleWithComponentKeepsSettings(t *testing.T) {
	base := &ConsoleLogger{level: ports.LevelWarn, color: true}
	child, ok := base.WithComponent("Display").(*ConsoleLogger)
	if !ok {
		t.Fatal("WithComponent did not return a ConsoleLogger")
	}
	if child.component != "Display" || child.level != ports.LevelWarn || !child.color {
		t.Errorf("child settings = %+v", child)
	}
}

func TestNewConsoleRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	l := NewConsole(ports.LevelInfo)
	if l.color {
		t.Error("NO_COLOR set but color output enabled")
	}
}
