package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"```sql\nSELECT 1\n```", "SELECT 1"},
		{"```\nSELECT 1\n```", "SELECT 1"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  SELECT 1  ", "SELECT 1"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, stripCodeFence(c.in), c.in)
	}
}
