package selection

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIDs(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestStore_Toggle(t *testing.T) {
	id := uuid.New()
	terminal := uuid.New()
	s := NewStore(func(x uuid.UUID) bool { return x != terminal })

	t.Run("selects then deselects", func(t *testing.T) {
		on, err := s.Toggle(id)
		require.NoError(t, err)
		assert.True(t, on)
		assert.True(t, s.Contains(id))

		on, err = s.Toggle(id)
		require.NoError(t, err)
		assert.False(t, on)
		assert.False(t, s.Contains(id))
	})

	t.Run("rejects ineligible id", func(t *testing.T) {
		on, err := s.Toggle(terminal)
		assert.ErrorIs(t, err, ErrNotSelectable)
		assert.False(t, on)
		assert.Equal(t, 0, s.Len())
	})
}

func TestStore_SelectAllVisible(t *testing.T) {
	ids := newIDs(4)

	t.Run("scoped to visible ids", func(t *testing.T) {
		s := NewStore(nil)
		s.Restore(ids[:2])

		s.SelectAllVisible(ids[2:])
		assert.ElementsMatch(t, ids, s.IDs())

		s.SelectAllVisible(ids[2:])
		assert.ElementsMatch(t, ids[:2], s.IDs())
	})

	t.Run("partially selected page becomes fully selected", func(t *testing.T) {
		s := NewStore(nil)
		_, _ = s.Toggle(ids[0])

		s.SelectAllVisible(ids[:3])
		assert.Equal(t, ids[:3], s.IDs())
	})

	t.Run("ignores ineligible visible ids", func(t *testing.T) {
		blocked := ids[1]
		s := NewStore(func(x uuid.UUID) bool { return x != blocked })

		s.SelectAllVisible(ids[:2])
		assert.Equal(t, []uuid.UUID{ids[0]}, s.IDs())

		s.SelectAllVisible(ids[:2])
		assert.Empty(t, s.IDs())
	})

	t.Run("no eligible visible ids is a no-op", func(t *testing.T) {
		s := NewStore(func(uuid.UUID) bool { return false })
		s.SelectAllVisible(ids)
		assert.Equal(t, 0, s.Len())
	})
}

func TestStore_Prune(t *testing.T) {
	ids := newIDs(4)
	consolidated := map[uuid.UUID]bool{}
	s := NewStore(func(x uuid.UUID) bool { return !consolidated[x] })
	s.Restore(ids)

	consolidated[ids[1]] = true
	removed := s.Prune([]uuid.UUID{ids[0], ids[1], ids[2]})

	assert.Equal(t, 2, removed)
	assert.Equal(t, []uuid.UUID{ids[0], ids[2]}, s.IDs())
}

func TestStore_ClearAndRestore(t *testing.T) {
	ids := newIDs(3)
	s := NewStore(func(x uuid.UUID) bool { return x != ids[2] })

	s.Restore(ids)
	assert.Equal(t, ids[:2], s.IDs())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}

func TestStore_HeaderState(t *testing.T) {
	ids := newIDs(3)
	s := NewStore(nil)

	assert.Equal(t, HeaderNone, s.HeaderState(ids))

	_, _ = s.Toggle(ids[0])
	assert.Equal(t, HeaderSome, s.HeaderState(ids))

	s.SelectAllVisible(ids)
	assert.Equal(t, HeaderAll, s.HeaderState(ids))

	assert.Equal(t, HeaderNone, s.HeaderState(nil))
}

// ledgerModel stands in for the loaded records: an id is eligible while it
// is present and not terminal. Terminal is sticky.
type ledgerModel struct {
	ids      []uuid.UUID
	present  map[uuid.UUID]bool
	terminal map[uuid.UUID]bool
}

func (m *ledgerModel) eligible(id uuid.UUID) bool {
	return m.present[id] && !m.terminal[id]
}

func (m *ledgerModel) loaded() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m.ids))
	for _, id := range m.ids {
		if m.present[id] {
			out = append(out, id)
		}
	}
	return out
}

func pick(f *gofakeit.Faker, ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0)
	for _, id := range ids {
		if f.Bool() {
			out = append(out, id)
		}
	}
	return out
}

func TestStore_RandomSequences(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		f := gofakeit.New(seed)

		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			m := &ledgerModel{present: map[uuid.UUID]bool{}, terminal: map[uuid.UUID]bool{}}
			for i := 0; i < 30; i++ {
				id := uuid.New()
				m.ids = append(m.ids, id)
				m.present[id] = f.IntRange(0, 9) > 0
				m.terminal[id] = f.IntRange(0, 4) == 0
			}
			stranger := uuid.New()
			s := NewStore(m.eligible)

			for step := 0; step < 200; step++ {
				var op string
				switch f.IntRange(0, 5) {
				case 0, 1:
					op = "toggle"
					id := m.ids[f.IntRange(0, len(m.ids)-1)]
					if f.IntRange(0, 9) == 0 {
						id = stranger
					}
					wasSelected := s.Contains(id)
					on, err := s.Toggle(id)
					if !wasSelected && !m.eligible(id) {
						assert.ErrorIs(t, err, ErrNotSelectable)
					} else {
						require.NoError(t, err)
						assert.Equal(t, !wasSelected, on)
					}
				case 2:
					op = "selectAllVisible"
					visible := append(pick(f, m.ids), stranger)
					s.SelectAllVisible(visible)
				case 3:
					// records change on reload, then the selection is pruned
					op = "reload+prune"
					for _, id := range m.ids {
						switch f.IntRange(0, 9) {
						case 0:
							m.terminal[id] = true
						case 1:
							m.present[id] = !m.present[id]
						}
					}
					s.Prune(m.loaded())
				case 4:
					op = "retain"
					drop := map[uuid.UUID]bool{}
					for _, id := range pick(f, s.IDs()) {
						drop[id] = true
					}
					s.Retain(func(id uuid.UUID) bool { return !drop[id] })
				case 5:
					op = "restore"
					s.Restore(append(pick(f, m.ids), stranger))
				}

				ids := s.IDs()
				seen := make(map[uuid.UUID]bool, len(ids))
				for _, id := range ids {
					require.Falsef(t, seen[id], "step %d (%s): duplicate id", step, op)
					seen[id] = true
					require.Truef(t, m.eligible(id), "step %d (%s): ineligible id selected", step, op)
					require.True(t, s.Contains(id))
				}
				require.Equal(t, len(ids), s.Len())
				require.False(t, s.Contains(stranger))
			}
		})
	}
}
