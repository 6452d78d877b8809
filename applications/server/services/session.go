package services

import (
	"sync"

	"github.com/donmikel/lcpmedia/applications/server"
	"github.com/donmikel/lcpmedia/applications/server/domain"
)

type playerSession struct {
	state  domain.SessionState
	subs   map[uint64]chan domain.SessionState
	nextID uint64
	mutex  sync.Mutex
}

// NewPlayerSession returns the now-playing state owner. Views observe it with
// Subscribe; a slow subscriber only ever sees the latest state.
func NewPlayerSession() server.PlayerSession {
	return &playerSession{
		state: domain.SessionState{Volume: 1},
		subs:  map[uint64]chan domain.SessionState{},
	}
}

func (p *playerSession) State() domain.SessionState {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.state
}

func (p *playerSession) Update(fn func(*domain.SessionState)) domain.SessionState {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	version := p.state.Version
	fn(&p.state)
	p.state.Version = version + 1

	for _, ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- p.state
	}

	return p.state
}

func (p *playerSession) Subscribe() (<-chan domain.SessionState, func()) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	id := p.nextID
	p.nextID++

	ch := make(chan domain.SessionState, 1)
	p.subs[id] = ch

	return ch, func() {
		p.mutex.Lock()
		defer p.mutex.Unlock()

		if _, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(ch)
		}
	}
}
