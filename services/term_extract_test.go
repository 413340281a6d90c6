package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreCleanText(t *testing.T) {
	raw := "Stakeholder alignment is key.\n\n\nPage 12\n###\nWe track deliverables weekly.\nTrang 3"

	got := PreCleanText(raw)

	assert.Contains(t, got, "Stakeholder alignment is key.")
	assert.Contains(t, got, "We track deliverables weekly.")
	assert.NotContains(t, got, "Page 12")
	assert.NotContains(t, got, "Trang 3")
	assert.NotContains(t, got, "###")
	assert.NotContains(t, got, "\n\n")
}

func TestPreCleanText_Empty(t *testing.T) {
	assert.Equal(t, "", PreCleanText("  \n 42 \n --- \n"))
}
