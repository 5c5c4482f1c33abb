package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://s3.example.com/tutor/replies%2F2026-10-19%2Freply_abc.mp3",
		publicURL("https://s3.example.com", "tutor", "replies/2026-10-19/reply_abc.mp3"),
	)
}
