package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/object-counter/internal/imaging"
)

func writeSquares(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if y >= 40 && y < 60 && ((x >= 15 && x < 35) || (x >= 65 && x < 85)) {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, "squares.png")
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code: got %d, want 0", code)
	}
	if !strings.HasPrefix(stdout.String(), "object-counter ") {
		t.Errorf("unexpected output: %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"help"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code: got %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Errorf("help missing usage: %q", stdout.String())
	}
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	path := writeSquares(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-log-level", "error", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0\nstderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "squares.png: 2 objects") {
		t.Errorf("unexpected report: %s", stdout.String())
	}
	for _, name := range []string{"squares_result.png", "squares_mask_combined.png", "squares_mask_dark.png", "squares_mask_light.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRun_ModeFlagKeepsFileSettings(t *testing.T) {
	dir := t.TempDir()
	path := writeSquares(t, dir)
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "pipeline:\n  mode: simple\n  min_area: 1000\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfgPath, "-mode", "advanced", "-no-masks", "-log-level", "error", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0\nstderr: %s", code, stderr.String())
	}
	// Both squares enclose 361 square pixels, below the configured 1000
	if !strings.Contains(stdout.String(), "squares.png: 0 objects") {
		t.Errorf("min_area from the file should survive -mode: %s", stdout.String())
	}
}

func TestRun_FailureExitCode(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-log-level", "error", bad}, &stdout, &stderr); code != 1 {
		t.Errorf("exit code: got %d, want 1", code)
	}
	if !strings.Contains(stdout.String(), "No image was processed successfully.") {
		t.Errorf("unexpected report: %s", stdout.String())
	}
}

func TestRun_BadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no inputs", []string{}, 2},
		{"unknown flag", []string{"-bogus"}, 2},
		{"unknown mode", []string{"-mode", "fancy", "x.png"}, 1},
		{"empty mode", []string{"-mode", "", "x.png"}, 2},
		{"unknown backend", []string{"-backend", "cuda", "x.png"}, 1},
		{"missing input", []string{filepath.Join(t.TempDir(), "missing.png")}, 1},
		{"zero workers", []string{"-workers", "0", "x.png"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.want {
				t.Errorf("exit code: got %d, want %d\nstderr: %s", code, tt.want, stderr.String())
			}
		})
	}
}
