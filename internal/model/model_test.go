package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorValid(t *testing.T) {
	for _, c := range Palette {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, Color("").Valid())
	assert.False(t, Color("purple").Valid())
	assert.False(t, Color("Yellow").Valid())
	assert.Equal(t, ColorYellow, DefaultColor)
}

func TestDocumentPending(t *testing.T) {
	d := &Document{ID: "d1"}
	assert.True(t, d.Pending())

	d.StorageKey = "pdfs/u1/1-a.pdf"
	assert.False(t, d.Pending())
}
