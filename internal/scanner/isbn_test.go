package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanISBN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9783551752714", "9783551752714", true},
		{"978-3-551-75271-4", "9783551752714", true},
		{" 978 3 551 75271 4 ", "9783551752714", true},
		{"3-551-75271-x", "355175271X", true},
		{"355175271X", "355175271X", true},
		{"12345", "12345", false},
		{"97835517527145", "97835517527145", false},
		{"X551752714", "X551752714", false},
		{"", "", false},
		{"ISBN", "", false},
	}
	for _, tt := range tests {
		got, ok := CleanISBN(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
