package desktop

import (
	"strings"
	"testing"
)

func TestRenderInitScript(t *testing.T) {
	script, err := RenderInitScript()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`"chatgpt.com"`,
		`"openai.com"`,
		`"https://cdn.oaistatic.com"`,
		"window.go.desktop.Commands",
		"SaveDownload",
		"OpenWindow",
		"OpenLink",
		"ReloadWebview",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("init script missing %s", want)
		}
	}
	if strings.Contains(script, "{{") {
		t.Error("init script has unrendered template actions")
	}
}
