package registrar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsComponentName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		// Valid names
		{name: "single segment", input: "User", want: true},
		{name: "two segments", input: "UserCard", want: true},
		{name: "three segments", input: "NavBarItem", want: true},

		// Invalid names
		{name: "empty", input: "", want: false},
		{name: "lowercase first letter", input: "userCard", want: false},
		{name: "single uppercase letter", input: "U", want: false},
		{name: "single letter segment", input: "X", want: false},
		{name: "all caps", input: "USER", want: false},
		{name: "consecutive uppercase", input: "NAVBar", want: false},
		{name: "trailing uppercase", input: "UserC", want: false},
		{name: "underscore", input: "User_Card", want: false},
		{name: "hyphen", input: "User-Card", want: false},
		{name: "digit", input: "User2", want: false},
		{name: "dot", input: "User.Card", want: false},
		{name: "leading space", input: " User", want: false},
		{name: "non ascii", input: "Über", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsComponentName(tt.input))
		})
	}
}
