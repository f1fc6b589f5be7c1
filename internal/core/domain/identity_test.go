package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityOf_Deterministic(t *testing.T) {
	a := IdentityOf([]byte("%PDF-1.4 hello"))
	b := IdentityOf([]byte("%PDF-1.4 hello"))
	c := IdentityOf([]byte("%PDF-1.4 hellp"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestIdentityOf_Shape(t *testing.T) {
	id := IdentityOf([]byte("abc"))

	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", id.SHA256)
	assert.Equal(t, "ba7816bf8f01cfea", id.ID)
	assert.True(t, strings.HasPrefix(id.SHA256, id.ID))
	assert.True(t, ValidID(id.ID))
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"ba7816bf8f01cfea", true},
		{"BA7816BF8F01CFEA", false},
		{"ba7816bf8f01cfe", false},
		{"../../etc/passwd", false},
		{"", false},
		{"zz7816bf8f01cfea", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidID(tt.id))
		})
	}
}
