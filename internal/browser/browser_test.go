package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com/a?b=c", false},
		{"  https://example.com  ", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Validate(tt.url)
		if tt.wantErr {
			assert.Error(t, err, "Validate(%q)", tt.url)
		} else {
			assert.NoError(t, err, "Validate(%q)", tt.url)
		}
	}
}

func TestOpenRejectsBeforeLaunch(t *testing.T) {
	t.Setenv("BROWSER", "definitely-not-a-real-binary")
	assert.Error(t, Open("javascript:alert(1)"))
}

func TestCommand(t *testing.T) {
	const u = "https://example.com"
	tests := []struct {
		goos, env string
		wantName  string
		wantArgs  []string
	}{
		{"darwin", "", "open", []string{u}},
		{"linux", "", "xdg-open", []string{u}},
		{"freebsd", "", "xdg-open", []string{u}},
		{"windows", "", "rundll32", []string{"url.dll,FileProtocolHandler", u}},
		{"linux", "firefox --new-tab", "firefox", []string{"--new-tab", u}},
	}
	for _, tt := range tests {
		name, args := command(tt.goos, tt.env, u)
		assert.Equal(t, tt.wantName, name, "command(%q, %q)", tt.goos, tt.env)
		assert.Equal(t, tt.wantArgs, args, "command(%q, %q)", tt.goos, tt.env)
	}
}
