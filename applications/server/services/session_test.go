package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/lcpmedia/applications/server/domain"
)

func TestPlayerSessionUpdate(t *testing.T) {
	session := NewPlayerSession()
	assert.Equal(t, domain.SessionState{Volume: 1}, session.State())

	state := session.Update(func(s *domain.SessionState) {
		s.Kind = domain.PlaybackAudio
		s.Path = "/music/song.mp3"
		s.Playing = true
	})

	assert.Equal(t, uint64(1), state.Version)
	assert.Equal(t, state, session.State())
}

func TestPlayerSessionSubscribeKeepsLatest(t *testing.T) {
	session := NewPlayerSession()
	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()

	for i := 1; i <= 5; i++ {
		pos := float64(i)
		session.Update(func(s *domain.SessionState) { s.Position = pos })
	}

	state := <-updates
	assert.Equal(t, float64(5), state.Position)
	assert.Equal(t, uint64(5), state.Version)

	select {
	case s := <-updates:
		t.Fatalf("unexpected extra update %+v", s)
	default:
	}
}

func TestPlayerSessionUnsubscribe(t *testing.T) {
	session := NewPlayerSession()
	first, unsubscribeFirst := session.Subscribe()
	second, unsubscribeSecond := session.Subscribe()
	defer unsubscribeSecond()

	unsubscribeFirst()
	unsubscribeFirst()

	_, ok := <-first
	assert.False(t, ok)

	session.Update(func(s *domain.SessionState) { s.Playing = true })

	state, ok := <-second
	require.True(t, ok)
	assert.True(t, state.Playing)
}
