package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "composer.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderCommand(t *testing.T) {
	cfg := writeConfig(t, "{}\n")

	tests := []struct {
		name   string
		stdin  string
		args   []string
		expect string
	}{
		{
			name:   "description",
			stdin:  `{"type":"Text","attributes":{"text":"Hi"}}`,
			args:   []string{"render", "-c", cfg},
			expect: "Hi\n",
		},
		{
			name:   "message envelope",
			stdin:  `{"type":"component-composer-ui","payload":{"type":"Button","attributes":{"variant":"outline"},"slots":{"children":[{"type":"Text","attributes":{"text":"Go"}}]}}}`,
			args:   []string{"render", "--message", "-c", cfg},
			expect: "<button class=\"btn btn-outline\" type=\"button\">Go</button>\n",
		},
		{
			name:   "unknown type",
			stdin:  `{"type":"Nope"}`,
			args:   []string{"render", "--message=false", "-c", cfg},
			expect: "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			if out != tt.expect {
				t.Errorf("output = %q, want %q", out, tt.expect)
			}
		})
	}
}

func TestRenderCommandInvalidInput(t *testing.T) {
	cfg := writeConfig(t, "{}\n")
	if _, err := execute(t, `[1,2]`, "render", "--message=false", "-c", cfg); err == nil {
		t.Error("expected error for non-object input")
	}
}

func TestSchemaCommand(t *testing.T) {
	cfg := writeConfig(t, "{}\n")

	out, err := execute(t, "", "schema", "--envelope", "-c", cfg)
	if err != nil {
		t.Fatalf("schema failed: %v", err)
	}
	for _, want := range []string{`"type": "component-composer-schema"`, `"Button"`, `"slotNames"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	schemaEnvelope = false
}

func TestValidateCommand(t *testing.T) {
	good := writeConfig(t, "protocol:\n  signing_key: k\n")
	out, err := execute(t, "", "validate", "-c", good)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, "Message signing: on") {
		t.Errorf("output = %q", out)
	}

	bad := writeConfig(t, "catalog:\n  Card:\n    primitive: card\n")
	if _, err := execute(t, "", "validate", "-c", bad); err == nil {
		t.Error("expected error for unknown primitive")
	}

	if _, err := execute(t, "", "validate", "-c", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAttachCommand(t *testing.T) {
	cfg := writeConfig(t, "{}\n")
	outFile := filepath.Join(t.TempDir(), "ui.html")

	stdin := `{"type":"component-composer-ui","payload":{"type":"Text","attributes":{"text":"first"}}}
not a message
{"type":"component-composer-ui","payload":{"type":"Text","attributes":{"text":"second"}}}
`
	out, err := execute(t, stdin, "attach", "--out", outFile, "-c", cfg)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if !strings.HasPrefix(out, `{"type":"component-composer-schema"`) {
		t.Errorf("stdout should start with the handshake, got %q", out)
	}

	html, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(html) != "second" {
		t.Errorf("display = %q, want second", html)
	}
	attachOut = ""
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "composer dev") {
		t.Errorf("output = %q", out)
	}
}
