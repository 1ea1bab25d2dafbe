package desktop

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/bytedance/sonic"

	"github.com/chatgpt-desktop/chatgpt-desktop/internal/policy"
)

//go:embed init.js.tmpl
var initScriptSource string

var initScriptTmpl = template.Must(template.New("init.js").Parse(initScriptSource))

// PreconnectOrigins are the CDNs the hosted page loads its assets from.
var PreconnectOrigins = []string{
	"https://cdn.oaistatic.com",
	"https://cdn.openai.com",
}

// RenderInitScript builds the script evaluated on every page load. The host
// allow-list comes from package policy so the page and native checks agree.
func RenderInitScript() (string, error) {
	allowed, err := sonic.MarshalString(policy.AllowedDomains())
	if err != nil {
		return "", fmt.Errorf("encode allow-list: %w", err)
	}
	preconnect, err := sonic.MarshalString(PreconnectOrigins)
	if err != nil {
		return "", fmt.Errorf("encode preconnect origins: %w", err)
	}

	var b strings.Builder
	err = initScriptTmpl.Execute(&b, struct {
		AllowedDomains string
		Preconnect     string
	}{allowed, preconnect})
	if err != nil {
		return "", fmt.Errorf("render init script: %w", err)
	}
	return b.String(), nil
}
