package session_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndsborki/loadout-bot/internal/session"
)

func TestStartCreateResetsOtherWizards(t *testing.T) {
	s := &session.Session{UserID: "u1"}

	s.StartBrowse()
	require.True(t, s.IsActive(session.WizardBrowse))

	cs := s.StartCreate()
	assert.True(t, s.IsActive(session.WizardCreate))
	assert.Equal(t, session.CreateStepWeaponName, cs.Step)
	assert.Nil(t, s.Browse)
	assert.Nil(t, s.Delete)
}

func TestReset(t *testing.T) {
	s := &session.Session{UserID: "u1"}
	s.StartDelete()

	s.Reset()
	assert.Equal(t, session.WizardNone, s.Wizard)
	assert.Nil(t, s.Create)
	assert.Nil(t, s.Browse)
	assert.Nil(t, s.Delete)
}

func TestCreateStateSlotTracking(t *testing.T) {
	cs := &session.CreateState{
		ModuleOptions: []string{"muzzle", "barrel", "optic"},
		Selected:      []string{"barrel"},
	}

	assert.Equal(t, []string{"muzzle", "optic"}, cs.RemainingSlots())
	assert.True(t, cs.IsSelected("barrel"))
	assert.False(t, cs.IsSelected("muzzle"))
	assert.True(t, cs.KnownSlot("optic"))
	assert.False(t, cs.KnownSlot("stock"))
}

func TestManagerIsolatesUsers(t *testing.T) {
	m := session.NewManager()

	err := m.Do("u1", func(s *session.Session) error {
		s.StartCreate()
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, session.WizardCreate, m.Peek("u1"))
	assert.Equal(t, session.WizardNone, m.Peek("u2"))
}

func TestManagerKeepsStateAcrossCalls(t *testing.T) {
	m := session.NewManager()

	require.NoError(t, m.Do("u1", func(s *session.Session) error {
		cs := s.StartCreate()
		cs.WeaponName = "Kilo 141"
		return nil
	}))

	require.NoError(t, m.Do("u1", func(s *session.Session) error {
		assert.Equal(t, "Kilo 141", s.Create.WeaponName)
		return nil
	}))
}

func TestManagerConcurrentUsers(t *testing.T) {
	m := session.NewManager()

	var wg sync.WaitGroup
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = m.Do(id, func(s *session.Session) error {
					s.StartBrowse()
					s.Reset()
					return nil
				})
			}
		}(id)
	}
	wg.Wait()
}
