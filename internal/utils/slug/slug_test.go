package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chelsea", "chelsea"},
		{"Manchester United", "manchester-united"},
		{"Paris Saint-Germain", "paris-saint-germain"},
		{"  Brighton & Hove Albion  ", "brighton-hove-albion"},
		{"AC Milan!!", "ac-milan"},
		{"Santiago Bernabéu", "santiago-bernabéu"},
		{"a -- b", "a-b"},
		{"---", ""},
		{"1. FC Köln", "1-fc-köln"},
		{"snake_case name", "snake_case-name"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestPair(t *testing.T) {
	assert.Equal(t, "chelsea-vs-manchester-united", Pair("Chelsea", "Manchester United"))
}
